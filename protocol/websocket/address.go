package websocket

import (
	"net/url"
	"strings"
)

const (
	HttpsOnlyWebsocketScheme = "wss"
	HttpWebsocketScheme      = "ws"
)

func parseAddress(address string) (*url.URL, error) {
	trimmed := strings.TrimSpace(address)

	target, err := url.Parse(trimmed)
	if err != nil {
		return nil, &InvalidAddressError{Address: address, Reason: "not a valid URI", InnerErr: err}
	} else if !target.IsAbs() || target.Host == "" {
		return nil, &InvalidAddressError{Address: address, Reason: "not an absolute URI"}
	}

	// a bare trailing '#' parses to an empty fragment, so look at the raw text too
	if target.Fragment != "" || strings.Contains(trimmed, "#") {
		return nil, &InvalidAddressError{Address: address, Reason: "fragments are not allowed in websocket URIs"}
	}

	if !strings.EqualFold(target.Scheme, HttpWebsocketScheme) && !strings.EqualFold(target.Scheme, HttpsOnlyWebsocketScheme) {
		return nil, &InvalidAddressError{Address: address, Reason: "only ws:// and wss:// schemes are supported"}
	}
	target.Scheme = strings.ToLower(target.Scheme)

	return target, nil
}
