package testutil

import (
	"context"

	"github.com/keyfob-dev/keyfob/internal/device"
	"github.com/keyfob-dev/keyfob/internal/identity"
)

// FakeSigner is a scriptable device.Signer. Each operation delegates to the
// corresponding func field when set and records the call either way, so tests
// can assert both behavior and interaction order.
type FakeSigner struct {
	GetPublicNodeFunc func(ctx context.Context, path []uint32, curve device.Curve) (*device.PublicNode, error)
	SignIdentityFunc  func(ctx context.Context, id *identity.Identity, hiddenChallenge []byte, visualChallenge string, curve device.Curve) (*device.IdentitySignature, error)
	GetAddressFunc    func(ctx context.Context, path []uint32, coinName string, showDisplay bool) error

	// Calls records the operation names in invocation order.
	Calls []string

	// SignRequests records every SignIdentity invocation.
	SignRequests []SignRequest

	// Cleared and Closed count ClearSession and Close invocations.
	Cleared int
	Closed  int
}

// SignRequest captures the arguments of one SignIdentity call.
type SignRequest struct {
	Identity        *identity.Identity
	HiddenChallenge []byte
	VisualChallenge string
	Curve           device.Curve
}

// GetPublicNode implements device.Signer.
func (f *FakeSigner) GetPublicNode(ctx context.Context, path []uint32, curve device.Curve) (*device.PublicNode, error) {
	f.Calls = append(f.Calls, "GetPublicNode")
	if f.GetPublicNodeFunc != nil {
		return f.GetPublicNodeFunc(ctx, path, curve)
	}
	return &device.PublicNode{}, nil
}

// SignIdentity implements device.Signer.
func (f *FakeSigner) SignIdentity(ctx context.Context, id *identity.Identity, hiddenChallenge []byte, visualChallenge string, curve device.Curve) (*device.IdentitySignature, error) {
	f.Calls = append(f.Calls, "SignIdentity")
	f.SignRequests = append(f.SignRequests, SignRequest{
		Identity:        id,
		HiddenChallenge: hiddenChallenge,
		VisualChallenge: visualChallenge,
		Curve:           curve,
	})
	if f.SignIdentityFunc != nil {
		return f.SignIdentityFunc(ctx, id, hiddenChallenge, visualChallenge, curve)
	}
	return &device.IdentitySignature{}, nil
}

// GetAddress implements device.Signer.
func (f *FakeSigner) GetAddress(ctx context.Context, path []uint32, coinName string, showDisplay bool) error {
	f.Calls = append(f.Calls, "GetAddress")
	if f.GetAddressFunc != nil {
		return f.GetAddressFunc(ctx, path, coinName, showDisplay)
	}
	return nil
}

// ClearSession implements device.Signer.
func (f *FakeSigner) ClearSession() error {
	f.Calls = append(f.Calls, "ClearSession")
	f.Cleared++
	return nil
}

// Close implements device.Signer.
func (f *FakeSigner) Close() error {
	f.Calls = append(f.Calls, "Close")
	f.Closed++
	return nil
}
