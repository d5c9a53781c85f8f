package application

import (
	"context"
	"encoding/hex"
	"fmt"

	"github.com/lightningnetwork/lnd/fn/v2"
	log "github.com/sirupsen/logrus"
	"github.com/vulpemventures/cardano-coinselect/internal/core/domain"
	"github.com/vulpemventures/cardano-coinselect/internal/core/ports"
	"golang.org/x/crypto/blake2b"
)

var (
	ErrMissingTxInputs = fmt.Errorf("transaction must have at least one input")
)

// BuiltTransaction is a transaction built by the wallet and not yet visible
// in the mempool. If Body is empty, it is serialized from inputs, outputs
// and fee.
type BuiltTransaction struct {
	Body    []byte
	Inputs  []domain.TransactionInput
	Outputs []domain.TransactionOutput
	Fee     uint64
}

// ChainingService is responsible for preparing the candidates of a coin
// selection when the wallet has pending transactions:
//   - Filter out the utxos spent or created by transactions in the mempool,
//     and by the transactions built by the wallet.
//   - Optionally add the pending outputs paying to the wallet, so that
//     unconfirmed change can be spent right away.
//   - Track the utxos spent by the transactions built by the wallet.
//
// The service registers 1 handler for each spent utxo event, logging it.
type ChainingService struct {
	repoManager ports.RepoManager
	serializer  ports.TxSerializer

	log func(format string, a ...interface{})
}

func NewChainingService(
	repoManager ports.RepoManager, serializer ports.TxSerializer,
) *ChainingService {
	logFn := func(format string, a ...interface{}) {
		format = fmt.Sprintf("chaining service: %s", format)
		log.Debugf(format, a...)
	}
	svc := &ChainingService{repoManager, serializer, logFn}
	svc.registerHandlerForSpentUtxoEvents()
	return svc
}

// FilterCandidates applies the given chaining mode to the candidates, based
// on the pending transactions and on the utxos spent by the wallet.
func (s *ChainingService) FilterCandidates(
	ctx context.Context, address string, candidates []domain.Utxo,
	mempool []domain.MempoolTransaction, mode domain.TxChainingMode,
) ([]domain.Utxo, error) {
	if mode == domain.TxChainingNone {
		return FilterCandidates(address, candidates, nil, nil, nil, mode), nil
	}

	mempoolInputs, mempoolOutputs, err := domain.UtxosFromMempool(mempool)
	if err != nil {
		return nil, err
	}
	spentKeys, err := s.repoManager.SpentUtxoRepository().GetSpentUtxoKeys(ctx)
	if err != nil {
		return nil, err
	}

	filtered := FilterCandidates(
		address, candidates, mempoolInputs, mempoolOutputs,
		fn.NewSet(spentKeys...), mode,
	)
	s.log(
		"mode %s: %d candidates out of %d", mode, len(filtered), len(candidates),
	)
	return filtered, nil
}

// MarkSpent records the utxos selected for a transaction built by the
// wallet, so that they are filtered out until released.
func (s *ChainingService) MarkSpent(
	ctx context.Context, keys []domain.UtxoKey, spendingTxHash string,
) (int, error) {
	return s.repoManager.SpentUtxoRepository().MarkSpent(
		ctx, keys, spendingTxHash,
	)
}

// Release makes the given utxos available again, for example once the
// spending transaction was rejected.
func (s *ChainingService) Release(
	ctx context.Context, keys []domain.UtxoKey,
) (int, error) {
	return s.repoManager.SpentUtxoRepository().Release(ctx, keys)
}

// SpentUtxos returns the utxos marked as spent and not yet released.
func (s *ChainingService) SpentUtxos(
	ctx context.Context,
) ([]domain.SpentUtxo, error) {
	return s.repoManager.SpentUtxoRepository().GetSpentUtxos(ctx)
}

// CalculateNewCandidates returns the candidates left after the given
// transactions built by the wallet: their inputs are dropped and marked as
// spent, and their outputs paying to address are added.
func (s *ChainingService) CalculateNewCandidates(
	ctx context.Context, address string, candidates []domain.Utxo,
	txs []BuiltTransaction,
) ([]domain.Utxo, error) {
	next := domain.Utxos(candidates).Dedup()

	for _, tx := range txs {
		txHash, err := s.TxHash(tx)
		if err != nil {
			return nil, err
		}

		spent := fn.NewSet[domain.UtxoKey]()
		for _, in := range tx.Inputs {
			spent.Add(in.Key())
		}
		if _, err := s.MarkSpent(ctx, spent.ToSlice(), txHash); err != nil {
			return nil, err
		}
		next = next.Without(spent)

		if domain.IsSmartContractAddress(address) {
			continue
		}
		for i, out := range tx.Outputs {
			if out.Address != address {
				continue
			}
			next = append(next, domain.Utxo{
				UtxoKey:       domain.UtxoKey{TxHash: txHash, TxIndex: uint32(i)},
				Balance:       out.Value.Clone(),
				OutputAddress: out.Address,
				Datum:         out.Datum,
				ScriptRef:     out.ScriptRef,
			})
		}
		s.log("tx %s: %d candidates", txHash, len(next))
	}

	return next, nil
}

// TxHash returns the hash of the given transaction, the blake2b-256 digest of
// its serialized body.
func (s *ChainingService) TxHash(tx BuiltTransaction) (string, error) {
	if len(tx.Inputs) == 0 {
		return "", ErrMissingTxInputs
	}
	body := tx.Body
	if len(body) == 0 {
		buf, err := s.serializer.SerializeBody(tx.Inputs, tx.Outputs, tx.Fee)
		if err != nil {
			return "", err
		}
		body = buf
	}
	hash := blake2b.Sum256(body)
	return hex.EncodeToString(hash[:]), nil
}

func (s *ChainingService) registerHandlerForSpentUtxoEvents() {
	handler := func(event domain.SpentUtxoEvent) {
		s.log("%s %d utxos", event.EventType, len(event.Keys))
	}
	s.repoManager.RegisterHandlerForSpentUtxoEvent(
		domain.SpentUtxosMarked, handler,
	)
	s.repoManager.RegisterHandlerForSpentUtxoEvent(
		domain.SpentUtxosReleased, handler,
	)
}

// FilterCandidates returns the candidates usable with the given chaining
// mode:
//   - none - the candidates as they are.
//   - filter - the candidates not spent nor created by pending transactions,
//     and not spent by the wallet.
//   - chain - like filter, plus the pending outputs paying to address that
//     are not spent yet.
//
// The candidates are not modified and the result does not depend on how many
// times the filter is applied.
func FilterCandidates(
	address string, candidates []domain.Utxo,
	mempoolInputs fn.Set[domain.UtxoKey], mempoolOutputs []domain.Utxo,
	spent fn.Set[domain.UtxoKey], mode domain.TxChainingMode,
) []domain.Utxo {
	if mode == domain.TxChainingNone {
		return append([]domain.Utxo{}, candidates...)
	}

	isUnusable := func(key domain.UtxoKey) bool {
		return mempoolInputs.Contains(key) || spent.Contains(key)
	}
	pending := domain.Utxos(mempoolOutputs).KeySet()

	filtered := make([]domain.Utxo, 0, len(candidates))
	for _, u := range candidates {
		if isUnusable(u.Key()) || pending.Contains(u.Key()) {
			continue
		}
		filtered = append(filtered, u)
	}

	if mode != domain.TxChainingChain || domain.IsSmartContractAddress(address) {
		return filtered
	}

	present := domain.Utxos(filtered).KeySet()
	for _, u := range mempoolOutputs {
		if u.OutputAddress != address || isUnusable(u.Key()) ||
			present.Contains(u.Key()) {
			continue
		}
		present.Add(u.Key())
		filtered = append(filtered, u)
	}
	return filtered
}
