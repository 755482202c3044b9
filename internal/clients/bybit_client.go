package clients

import (
	"github.com/hirokisan/bybit/v2"
)

// NewBybitClient builds a Bybit V5 REST client, pointed at the testnet
// when requested.
func NewBybitClient(apiKey, apiSecret string, testnet bool) *bybit.Client {
	if testnet {
		return bybit.NewTestClient().WithAuth(apiKey, apiSecret)
	}
	return bybit.NewClient().WithAuth(apiKey, apiSecret)
}
