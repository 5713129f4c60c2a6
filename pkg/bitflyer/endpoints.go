package bitflyer

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// Endpoint is one catalogued API operation.
type Endpoint struct {
	Name     string
	Path     string
	Method   Method
	Private  bool
	Required []string
}

// Request builds the request descriptor for params.
func (e Endpoint) Request(params Params) Request {
	return Request{Path: e.Path, Method: e.Method, Params: params, Private: e.Private}
}

func (e Endpoint) checkRequired(params Params) error {
	for _, key := range e.Required {
		if _, ok := params[key]; !ok {
			return fmt.Errorf("%w: %s requires %q", ErrMissingParam, e.Name, key)
		}
	}
	return nil
}

// Catalogued endpoints.
var (
	EndpointMarkets               = Endpoint{Name: "markets", Path: "/v1/markets", Method: MethodGet}
	EndpointBoard                 = Endpoint{Name: "board", Path: "/v1/board", Method: MethodGet}
	EndpointTicker                = Endpoint{Name: "ticker", Path: "/v1/ticker", Method: MethodGet}
	EndpointExecutions            = Endpoint{Name: "executions", Path: "/v1/executions", Method: MethodGet}
	EndpointGetBoardState         = Endpoint{Name: "getboardstate", Path: "/v1/getboardstate", Method: MethodGet}
	EndpointGetHealth             = Endpoint{Name: "gethealth", Path: "/v1/gethealth", Method: MethodGet}
	EndpointGetChats              = Endpoint{Name: "getchats", Path: "/v1/getchats", Method: MethodGet}
	EndpointGetPermissions        = Endpoint{Name: "getpermissions", Path: "/v1/me/getpermissions", Method: MethodGet, Private: true}
	EndpointGetBalance            = Endpoint{Name: "getbalance", Path: "/v1/me/getbalance", Method: MethodGet, Private: true}
	EndpointGetCollateral         = Endpoint{Name: "getcollateral", Path: "/v1/me/getcollateral", Method: MethodGet, Private: true}
	EndpointGetCollateralAccounts = Endpoint{Name: "getcollateralaccounts", Path: "/v1/me/getcollateralaccounts", Method: MethodGet, Private: true}
	EndpointGetAddresses          = Endpoint{Name: "getaddresses", Path: "/v1/me/getaddresses", Method: MethodGet, Private: true}
	EndpointGetCoinIns            = Endpoint{Name: "getcoinins", Path: "/v1/me/getcoinins", Method: MethodGet, Private: true}
	EndpointGetCoinOuts           = Endpoint{Name: "getcoinouts", Path: "/v1/me/getcoinouts", Method: MethodGet, Private: true}
	EndpointGetBankAccounts       = Endpoint{Name: "getbankaccounts", Path: "/v1/me/getbankaccounts", Method: MethodGet, Private: true}
	EndpointGetDeposits           = Endpoint{Name: "getdeposits", Path: "/v1/me/getdeposits", Method: MethodGet, Private: true}
	EndpointWithdraw              = Endpoint{Name: "withdraw", Path: "/v1/me/withdraw", Method: MethodPost, Private: true, Required: []string{"currency_code", "bank_account_id", "amount"}}
	EndpointGetWithdrawals        = Endpoint{Name: "getwithdrawals", Path: "/v1/me/getwithdrawals", Method: MethodGet, Private: true}
	EndpointSendChildOrder        = Endpoint{Name: "sendchildorder", Path: "/v1/me/sendchildorder", Method: MethodPost, Private: true, Required: []string{"product_code", "child_order_type", "side", "size"}}
	EndpointCancelChildOrder      = Endpoint{Name: "cancelchildorder", Path: "/v1/me/cancelchildorder", Method: MethodPost, Private: true, Required: []string{"product_code"}}
	EndpointSendParentOrder       = Endpoint{Name: "sendparentorder", Path: "/v1/me/sendparentorder", Method: MethodPost, Private: true, Required: []string{"parameters"}}
	EndpointCancelParentOrder     = Endpoint{Name: "cancelparentorder", Path: "/v1/me/cancelparentorder", Method: MethodPost, Private: true, Required: []string{"product_code"}}
	EndpointCancelAllChildOrders  = Endpoint{Name: "cancelallchildorders", Path: "/v1/me/cancelallchildorders", Method: MethodPost, Private: true, Required: []string{"product_code"}}
	EndpointGetChildOrders        = Endpoint{Name: "getchildorders", Path: "/v1/me/getchildorders", Method: MethodGet, Private: true}
	EndpointGetParentOrders       = Endpoint{Name: "getparentorders", Path: "/v1/me/getparentorders", Method: MethodGet, Private: true}
	EndpointGetParentOrder        = Endpoint{Name: "getparentorder", Path: "/v1/me/getparentorder", Method: MethodGet, Private: true}
	EndpointGetExecutions         = Endpoint{Name: "getexecutions", Path: "/v1/me/getexecutions", Method: MethodGet, Private: true}
	EndpointGetBalanceHistory     = Endpoint{Name: "getbalancehistory", Path: "/v1/me/getbalancehistory", Method: MethodGet, Private: true}
	EndpointGetPositions          = Endpoint{Name: "getpositions", Path: "/v1/me/getpositions", Method: MethodGet, Private: true}
	EndpointGetCollateralHistory  = Endpoint{Name: "getcollateralhistory", Path: "/v1/me/getcollateralhistory", Method: MethodGet, Private: true}
	EndpointGetTradingCommission  = Endpoint{Name: "gettradingcommission", Path: "/v1/me/gettradingcommission", Method: MethodGet, Private: true, Required: []string{"product_code"}}
)

var catalog = indexEndpoints(
	EndpointMarkets,
	EndpointBoard,
	EndpointTicker,
	EndpointExecutions,
	EndpointGetBoardState,
	EndpointGetHealth,
	EndpointGetChats,
	EndpointGetPermissions,
	EndpointGetBalance,
	EndpointGetCollateral,
	EndpointGetCollateralAccounts,
	EndpointGetAddresses,
	EndpointGetCoinIns,
	EndpointGetCoinOuts,
	EndpointGetBankAccounts,
	EndpointGetDeposits,
	EndpointWithdraw,
	EndpointGetWithdrawals,
	EndpointSendChildOrder,
	EndpointCancelChildOrder,
	EndpointSendParentOrder,
	EndpointCancelParentOrder,
	EndpointCancelAllChildOrders,
	EndpointGetChildOrders,
	EndpointGetParentOrders,
	EndpointGetParentOrder,
	EndpointGetExecutions,
	EndpointGetBalanceHistory,
	EndpointGetPositions,
	EndpointGetCollateralHistory,
	EndpointGetTradingCommission,
)

func indexEndpoints(eps ...Endpoint) map[string]Endpoint {
	idx := make(map[string]Endpoint, len(eps))
	for _, ep := range eps {
		idx[ep.Name] = ep
	}
	return idx
}

// Lookup returns the endpoint registered under name (case-insensitive).
func Lookup(name string) (Endpoint, bool) {
	ep, ok := catalog[strings.ToLower(strings.TrimSpace(name))]
	return ep, ok
}

// Endpoints returns the catalog sorted by name.
func Endpoints() []Endpoint {
	out := make([]Endpoint, 0, len(catalog))
	for _, ep := range catalog {
		out = append(out, ep)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Call checks credentials and required params for ep, then executes it.
func (c *Client) Call(ctx context.Context, ep Endpoint, params Params) (any, error) {
	if ep.Private && !c.creds.Complete() {
		return nil, ErrAuthentication
	}
	if err := ep.checkRequired(params); err != nil {
		return nil, err
	}
	return c.Execute(ctx, ep.Request(params))
}

// CallByName resolves name in the catalog and calls it.
func (c *Client) CallByName(ctx context.Context, name string, params Params) (any, error) {
	ep, ok := Lookup(name)
	if !ok {
		return nil, fmt.Errorf("%w: unknown endpoint %q", ErrInvalidRequest, name)
	}
	return c.Call(ctx, ep, params)
}

// HTTP Public API

// Markets lists the tradable markets.
func (c *Client) Markets(ctx context.Context, params Params) (any, error) {
	return c.Call(ctx, EndpointMarkets, params)
}

// Board returns the order book.
func (c *Client) Board(ctx context.Context, params Params) (any, error) {
	return c.Call(ctx, EndpointBoard, params)
}

// Ticker returns the latest ticker.
func (c *Client) Ticker(ctx context.Context, params Params) (any, error) {
	return c.Call(ctx, EndpointTicker, params)
}

// Executions lists public executions.
func (c *Client) Executions(ctx context.Context, params Params) (any, error) {
	return c.Call(ctx, EndpointExecutions, params)
}

// GetBoardState returns the order book status.
func (c *Client) GetBoardState(ctx context.Context, params Params) (any, error) {
	return c.Call(ctx, EndpointGetBoardState, params)
}

// GetHealth returns the exchange status.
func (c *Client) GetHealth(ctx context.Context, params Params) (any, error) {
	return c.Call(ctx, EndpointGetHealth, params)
}

// GetChats lists chat messages.
func (c *Client) GetChats(ctx context.Context, params Params) (any, error) {
	return c.Call(ctx, EndpointGetChats, params)
}

// HTTP Private API

// GetPermissions lists the API key permissions.
func (c *Client) GetPermissions(ctx context.Context, params Params) (any, error) {
	return c.Call(ctx, EndpointGetPermissions, params)
}

// GetBalance returns the account asset balance.
func (c *Client) GetBalance(ctx context.Context, params Params) (any, error) {
	return c.Call(ctx, EndpointGetBalance, params)
}

// GetCollateral returns the margin status.
func (c *Client) GetCollateral(ctx context.Context, params Params) (any, error) {
	return c.Call(ctx, EndpointGetCollateral, params)
}

// GetCollateralAccounts returns margin by currency.
func (c *Client) GetCollateralAccounts(ctx context.Context, params Params) (any, error) {
	return c.Call(ctx, EndpointGetCollateralAccounts, params)
}

// GetAddresses lists deposit addresses.
func (c *Client) GetAddresses(ctx context.Context, params Params) (any, error) {
	return c.Call(ctx, EndpointGetAddresses, params)
}

// GetCoinIns lists crypto deposits.
func (c *Client) GetCoinIns(ctx context.Context, params Params) (any, error) {
	return c.Call(ctx, EndpointGetCoinIns, params)
}

// GetCoinOuts lists crypto transfers out.
func (c *Client) GetCoinOuts(ctx context.Context, params Params) (any, error) {
	return c.Call(ctx, EndpointGetCoinOuts, params)
}

// GetBankAccounts lists registered bank accounts.
func (c *Client) GetBankAccounts(ctx context.Context, params Params) (any, error) {
	return c.Call(ctx, EndpointGetBankAccounts, params)
}

// GetDeposits lists cash deposits.
func (c *Client) GetDeposits(ctx context.Context, params Params) (any, error) {
	return c.Call(ctx, EndpointGetDeposits, params)
}

// Withdraw withdraws funds to a bank account.
func (c *Client) Withdraw(ctx context.Context, params Params) (any, error) {
	return c.Call(ctx, EndpointWithdraw, params)
}

// GetWithdrawals lists withdrawals.
func (c *Client) GetWithdrawals(ctx context.Context, params Params) (any, error) {
	return c.Call(ctx, EndpointGetWithdrawals, params)
}

// SendChildOrder places a new order.
func (c *Client) SendChildOrder(ctx context.Context, params Params) (any, error) {
	return c.Call(ctx, EndpointSendChildOrder, params)
}

// CancelChildOrder cancels an order.
func (c *Client) CancelChildOrder(ctx context.Context, params Params) (any, error) {
	return c.Call(ctx, EndpointCancelChildOrder, params)
}

// SendParentOrder places a special (parent) order.
func (c *Client) SendParentOrder(ctx context.Context, params Params) (any, error) {
	return c.Call(ctx, EndpointSendParentOrder, params)
}

// CancelParentOrder cancels a parent order.
func (c *Client) CancelParentOrder(ctx context.Context, params Params) (any, error) {
	return c.Call(ctx, EndpointCancelParentOrder, params)
}

// CancelAllChildOrders cancels every open order for a product.
func (c *Client) CancelAllChildOrders(ctx context.Context, params Params) (any, error) {
	return c.Call(ctx, EndpointCancelAllChildOrders, params)
}

// GetChildOrders lists orders.
func (c *Client) GetChildOrders(ctx context.Context, params Params) (any, error) {
	return c.Call(ctx, EndpointGetChildOrders, params)
}

// GetParentOrders lists parent orders.
func (c *Client) GetParentOrders(ctx context.Context, params Params) (any, error) {
	return c.Call(ctx, EndpointGetParentOrders, params)
}

// GetParentOrder returns one parent order.
func (c *Client) GetParentOrder(ctx context.Context, params Params) (any, error) {
	return c.Call(ctx, EndpointGetParentOrder, params)
}

// GetExecutions lists the account's executions.
func (c *Client) GetExecutions(ctx context.Context, params Params) (any, error) {
	return c.Call(ctx, EndpointGetExecutions, params)
}

// GetBalanceHistory lists balance changes.
func (c *Client) GetBalanceHistory(ctx context.Context, params Params) (any, error) {
	return c.Call(ctx, EndpointGetBalanceHistory, params)
}

// GetPositions lists open margin positions.
func (c *Client) GetPositions(ctx context.Context, params Params) (any, error) {
	return c.Call(ctx, EndpointGetPositions, params)
}

// GetCollateralHistory lists margin changes.
func (c *Client) GetCollateralHistory(ctx context.Context, params Params) (any, error) {
	return c.Call(ctx, EndpointGetCollateralHistory, params)
}

// GetTradingCommission returns the commission rate.
func (c *Client) GetTradingCommission(ctx context.Context, params Params) (any, error) {
	return c.Call(ctx, EndpointGetTradingCommission, params)
}
