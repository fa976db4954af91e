package provider

import (
	"context"

	"github.com/fstevanovic/sk-connect-rp-server-sample/internal/domain"
)

// Gateway adapts the wire-level Client to the domain-typed contract the
// orchestrators program against.
type Gateway struct {
	Client *Client
}

func NewGateway(client *Client) *Gateway {
	return &Gateway{Client: client}
}

func (g *Gateway) StartPairing(ctx context.Context, req domain.PairingRequest) (domain.PairingHandle, error) {
	resp, err := g.Client.PairDevice(ctx, req)
	if err != nil {
		return domain.PairingHandle{}, err
	}
	return domain.PairingHandle{
		TxnID:              resp.TxnID,
		PairCode:           resp.PairCode,
		NotificationHandle: resp.NotificationHandle,
		ExpiresAt:          req.Expiry,
	}, nil
}

func (g *Gateway) PairingResult(ctx context.Context, txnID string) (domain.RetrievalResult, error) {
	resp, err := g.Client.PairDeviceData(ctx, txnID)
	if err != nil {
		return domain.RetrievalResult{}, err
	}
	out := resp.ToDomain()
	if out.TxnID == "" {
		out.TxnID = txnID
	}
	return out, nil
}

func (g *Gateway) Cancel(ctx context.Context, txnID, reason string) error {
	_, err := g.Client.CancelRequest(ctx, txnID, reason)
	return err
}
