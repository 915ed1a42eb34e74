package haven

import (
	"context"

	"github.com/havenstore/haven-go/internal/errx"
	"github.com/havenstore/haven-go/internal/ledger"
)

// authPath is the resolved authorization-and-gas-payment path: a two-variant
// tagged union built once at construction and passed by value into every
// saga. The credentialed ledger entry points are reachable only through a
// credentialed path, so a self-paying caller can never hit them.
type authPath struct {
	strategy     GasStrategy
	credentialed bool

	// sender is set only on the sponsored path; the self-paid transaction
	// carries no sender and the ledger attributes ownership from the
	// signature.
	sender string

	// address is where ownership lands: the sponsor's derived address or the
	// configured invoking wallet. Used for owned-object queries.
	address string

	submit ledger.SubmitFunc

	// signer is held only on the sponsored path, for session credentials.
	signer *ledger.Signer
}

// resolveAuthPath fails closed: a strategy without its required material is a
// ConfigurationError at construction, not a surprise at call time.
func resolveAuthPath(cfg *Config, lc ledgerAPI) (authPath, error) {
	switch cfg.GasStrategy {
	case GasSponsored:
		if cfg.SponsorKey == "" {
			return authPath{}, errx.Configurationf("sponsored gas strategy requires a sponsor key")
		}
		signer, err := ledger.NewSignerFromHex(cfg.SponsorKey)
		if err != nil {
			return authPath{}, &errx.ConfigurationError{Msg: "invalid sponsor key", Cause: err}
		}
		submit := func(ctx context.Context, txBytes []byte) (*ledger.TxResponse, error) {
			return lc.ExecuteTransaction(ctx, txBytes, signer.Sign(txBytes), ledger.TxOptions{
				ShowEffects:       true,
				ShowObjectChanges: true,
				ShowEvents:        true,
			})
		}
		return authPath{
			strategy:     GasSponsored,
			credentialed: true,
			sender:       signer.Address(),
			address:      signer.Address(),
			submit:       submit,
			signer:       signer,
		}, nil

	case GasSelfPay:
		if cfg.SignAndSubmit == nil {
			return authPath{}, errx.Configurationf("self-pay gas strategy requires a sign-and-submit function")
		}
		if cfg.SenderAddress == "" {
			return authPath{}, errx.Configurationf("self-pay gas strategy requires the invoking address")
		}
		return authPath{
			strategy: GasSelfPay,
			address:  cfg.SenderAddress,
			submit:   ledger.SubmitFunc(cfg.SignAndSubmit),
		}, nil
	}
	return authPath{}, errx.Configurationf("unknown gas strategy %q", cfg.GasStrategy)
}

// call builds one entry-point invocation. On the credentialed path the
// function name gets the credentialed suffix and the credential object id is
// appended as the final argument; on the self-paid path neither happens.
func (a authPath) call(packageID, module, fn string, args []any, credentialID string) ledger.Call {
	if a.credentialed {
		fn += ledger.CredentialedSuffix
		args = append(args, credentialID)
	}
	return ledger.Call{Package: packageID, Module: module, Function: fn, Args: args}
}

// transaction wraps a call into an unsigned transaction. Only the sponsored
// path sets a sender.
func (a authPath) transaction(c ledger.Call, gasBudget uint64) *ledger.Transaction {
	return &ledger.Transaction{Sender: a.sender, Calls: []ledger.Call{c}, GasBudget: gasBudget}
}
