package bitflyer

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"time"
)

const (
	HeaderContentType     = "Content-Type"
	HeaderAccessKey       = "ACCESS-KEY"
	HeaderAccessTimestamp = "ACCESS-TIMESTAMP"
	HeaderAccessSign      = "ACCESS-SIGN"

	contentTypeJSON = "application/json"
)

// Sign returns the lowercase hex HMAC-SHA256 of timestamp+method+path+body.
func Sign(secret, timestamp string, method Method, path, body string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(timestamp + string(method) + path + body))
	return hex.EncodeToString(mac.Sum(nil))
}

// buildHeaders returns the headers for one request. Access headers are added
// only when creds is complete.
func buildHeaders(creds Credentials, now time.Time, method Method, path, body string) map[string]string {
	headers := map[string]string{HeaderContentType: contentTypeJSON}
	if !creds.Complete() {
		return headers
	}
	ts := strconv.FormatInt(now.Unix(), 10)
	headers[HeaderAccessKey] = creds.Key
	headers[HeaderAccessTimestamp] = ts
	headers[HeaderAccessSign] = Sign(creds.Secret, ts, method, path, body)
	return headers
}
