package siwe

import (
	"bytes"
	"context"
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/ethclient"
	"golang.org/x/crypto/sha3"
)

const (
	// DefaultRPCURL is the wallet infrastructure RPC used for contract-wallet checks.
	DefaultRPCURL  = "https://rpc.walletconnect.org/v1/?chainId=eip155:{chainId}&projectId={projectId}"
	defaultTimeout = 10 * time.Second
)

const erc1271ABIJSON = `[{"inputs":[{"name":"hash","type":"bytes32"},{"name":"signature","type":"bytes"}],"name":"isValidSignature","outputs":[{"name":"magicValue","type":"bytes4"}],"stateMutability":"view","type":"function"}]`

var (
	erc1271ABI   = mustParseABI(erc1271ABIJSON)
	erc1271Magic = []byte{0x16, 0x26, 0xba, 0x7e}
)

// ecdsaSignatureLen is the length of an r||s||v secp256k1 signature.
const ecdsaSignatureLen = 65

// ChainCaller is the subset of an Ethereum RPC client needed for EIP-1271 checks.
type ChainCaller interface {
	CodeAt(ctx context.Context, account common.Address, blockNumber *big.Int) ([]byte, error)
	CallContract(ctx context.Context, call ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
	Close()
}

// Dialer opens a ChainCaller for an RPC endpoint.
type Dialer func(ctx context.Context, rawURL string) (ChainCaller, error)

// Config controls signature verification.
type Config struct {
	ProjectID string
	RPCURL    string
	// Domain pins the expected message domain; empty disables the check.
	Domain  string
	Timeout time.Duration
}

// Option customizes a Verifier.
type Option func(*Verifier)

// WithDialer replaces the RPC dialer.
func WithDialer(d Dialer) Option {
	return func(v *Verifier) { v.dial = d }
}

// WithClock replaces the time source used for validity checks.
func WithClock(now func() time.Time) Option {
	return func(v *Verifier) { v.now = now }
}

// Verifier checks SIWE signatures from both externally owned accounts and
// contract wallets. It fails closed: any error means the signature is rejected.
type Verifier struct {
	cfg  Config
	dial Dialer
	now  func() time.Time

	mu      sync.Mutex
	callers map[int]ChainCaller
}

// NewVerifier builds a Verifier for the given wallet project.
func NewVerifier(cfg Config, opts ...Option) *Verifier {
	if cfg.RPCURL == "" {
		cfg.RPCURL = DefaultRPCURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	v := &Verifier{
		cfg:     cfg,
		dial:    dialEthClient,
		now:     time.Now,
		callers: make(map[int]ChainCaller),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Verify reports nil only when signature over msg was produced by msg.Address.
func (v *Verifier) Verify(ctx context.Context, msg *Message, signature string) error {
	ctx, cancel := context.WithTimeout(ctx, v.cfg.Timeout)
	defer cancel()

	if v.cfg.Domain != "" && !strings.EqualFold(msg.Domain, v.cfg.Domain) {
		return fmt.Errorf("%w: got %q", ErrDomainMismatch, msg.Domain)
	}
	if err := msg.ValidAt(v.now()); err != nil {
		return err
	}

	sig, err := hexutil.Decode(signature)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	if len(sig) < ecdsaSignatureLen {
		return fmt.Errorf("%w: %d bytes", ErrInvalidSignature, len(sig))
	}
	// Contract wallets may return longer signatures; only r||s||v goes through ecrecover.
	if len(sig) == ecdsaSignatureLen {
		if _, err := msg.parsed.VerifyEIP191(signature); err == nil {
			return nil
		}
	}
	return v.verifyContractWallet(ctx, msg, sig)
}

// Close releases cached RPC clients.
func (v *Verifier) Close() {
	v.mu.Lock()
	defer v.mu.Unlock()
	for chainID, c := range v.callers {
		c.Close()
		delete(v.callers, chainID)
	}
}

func (v *Verifier) verifyContractWallet(ctx context.Context, msg *Message, sig []byte) error {
	caller, err := v.caller(ctx, msg.ChainID)
	if err != nil {
		return err
	}

	code, err := caller.CodeAt(ctx, msg.Address, nil)
	if err != nil {
		return fmt.Errorf("%w: fetch code: %v", ErrInvalidSignature, err)
	}
	if len(code) == 0 {
		return ErrInvalidSignature
	}

	data, err := erc1271ABI.Pack("isValidSignature", eip191Hash(msg.Raw), sig)
	if err != nil {
		return fmt.Errorf("%w: pack call: %v", ErrInvalidSignature, err)
	}
	to := msg.Address
	out, err := caller.CallContract(ctx, ethereum.CallMsg{To: &to, Data: data}, nil)
	if err != nil {
		return fmt.Errorf("%w: isValidSignature: %v", ErrInvalidSignature, err)
	}
	if len(out) < len(erc1271Magic) || !bytes.Equal(out[:len(erc1271Magic)], erc1271Magic) {
		return ErrInvalidSignature
	}
	return nil
}

// caller returns the cached client for chainID, dialing without holding the
// lock so a slow endpoint only delays requests for that chain.
func (v *Verifier) caller(ctx context.Context, chainID int) (ChainCaller, error) {
	v.mu.Lock()
	c, ok := v.callers[chainID]
	v.mu.Unlock()
	if ok {
		return c, nil
	}

	url := strings.NewReplacer(
		"{chainId}", strconv.Itoa(chainID),
		"{projectId}", v.cfg.ProjectID,
	).Replace(v.cfg.RPCURL)
	dialed, err := v.dial(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("%w: dial chain %d: %v", ErrInvalidSignature, chainID, err)
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	if c, ok := v.callers[chainID]; ok {
		dialed.Close()
		return c, nil
	}
	v.callers[chainID] = dialed
	return dialed, nil
}

// eip191Hash is the personal_sign digest of message.
func eip191Hash(message string) [32]byte {
	h := sha3.NewLegacyKeccak256()
	fmt.Fprintf(h, "\x19Ethereum Signed Message:\n%d%s", len(message), message)
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}

func dialEthClient(ctx context.Context, rawURL string) (ChainCaller, error) {
	client, err := ethclient.DialContext(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	return client, nil
}

func mustParseABI(def string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(def))
	if err != nil {
		panic(err)
	}
	return parsed
}
