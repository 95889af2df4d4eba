package vault

import (
	"errors"
	"math/big"
	"sync"
	"time"
)

const (
	// MaxBPS is the basis-point denominator: 10000 bps = 100%.
	MaxBPS = 10000
	// MaxStrategies bounds the withdrawal queue length.
	MaxStrategies = 20

	secondsPerYear = 31_536_000
)

// UnlimitedAllowance is the sentinel approval value that is never decremented.
const UnlimitedAllowance = ^uint64(0)

// Config carries everything needed to initialize a vault.
type Config struct {
	// Address is the vault's holder identifier on the asset token.
	Address string
	// Asset is the single fungible token the vault pools.
	Asset Token

	Governance   string
	Management   string
	Guardian     string
	FeeRecipient string

	DepositLimit      uint64
	PerformanceFeeBps uint64
	ManagementFeeBps  uint64
	DispenseRateBps   uint64

	// ShareUnit is one whole share in base units; PricePerShare reports the
	// asset value of exactly one unit. Defaults to 1e6.
	ShareUnit uint64
	// LockDuration is the horizon over which locked profit fully dispenses
	// at a dispense rate of 10000 bps. Defaults to 6 hours.
	LockDuration time.Duration
	// Now supplies the clock; defaults to time.Now. Injectable so fee
	// proration and profit decay are deterministic under test.
	Now func() time.Time
}

// Vault is the pooled-capital engine. All state lives in one value mutated
// only through the exported operations; every mutating operation works on a
// deep copy committed atomically on success, so a failed call leaves state
// byte-for-byte identical to before.
type Vault struct {
	mu   sync.Mutex
	busy bool

	address      string
	asset        Token
	shareUnit    uint64
	lockDuration time.Duration
	now          func() time.Time

	// adapters holds the registered strategy callbacks, keyed by address.
	adapters map[string]Strategy

	st *state
}

// state is the single mutable ledger. It must stay deep-copyable by clone.
type state struct {
	totalShares uint64
	balances    map[string]uint64
	allowances  map[string]map[string]uint64

	idleAssets   uint64
	totalDebt    uint64
	debtRatioBps uint64 // sum over active strategies

	depositLimit      uint64
	emergencyShutdown bool
	performanceFeeBps uint64
	managementFeeBps  uint64
	dispenseRateBps   uint64

	// lockedProfit is the value still locked as of lockAnchor; the live
	// figure decays linearly from there, see currentLockedProfit.
	lockedProfit uint64
	lockAnchor   int64
	lastReport   int64

	// Clock and lock horizon, duplicated from the vault so pricing helpers
	// on state can decay locked profit without reaching back out.
	nowFn       func() int64
	lockSeconds uint64

	governance        string
	pendingGovernance string
	management        string
	guardian          string
	feeRecipient      string

	strategies map[string]*StrategyEntry
	queue      [MaxStrategies]string // "" marks an empty slot, left-packed
}

// New initializes a vault from cfg.
func New(cfg Config) (*Vault, error) {
	if cfg.Asset == nil {
		return nil, errors.New("vault: asset token required")
	}
	if cfg.Address == "" || cfg.Governance == "" {
		return nil, errors.New("vault: address and governance required")
	}
	if cfg.ShareUnit == 0 {
		cfg.ShareUnit = 1_000_000
	}
	if cfg.LockDuration == 0 {
		cfg.LockDuration = 6 * time.Hour
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	v := &Vault{
		address:      cfg.Address,
		asset:        cfg.Asset,
		shareUnit:    cfg.ShareUnit,
		lockDuration: cfg.LockDuration,
		now:          cfg.Now,
		adapters:     make(map[string]Strategy),
		st: &state{
			balances:          make(map[string]uint64),
			allowances:        make(map[string]map[string]uint64),
			depositLimit:      cfg.DepositLimit,
			performanceFeeBps: cfg.PerformanceFeeBps,
			managementFeeBps:  cfg.ManagementFeeBps,
			dispenseRateBps:   cfg.DispenseRateBps,
			governance:        cfg.Governance,
			management:        cfg.Management,
			guardian:          cfg.Guardian,
			feeRecipient:      cfg.FeeRecipient,
			strategies:        make(map[string]*StrategyEntry),
			lastReport:        cfg.Now().Unix(),
			lockAnchor:        cfg.Now().Unix(),
			nowFn:             func() int64 { return cfg.Now().Unix() },
			lockSeconds:       uint64(cfg.LockDuration.Seconds()),
		},
	}
	return v, nil
}

// Address returns the vault's holder identifier on the asset token.
func (v *Vault) Address() string { return v.address }

// Asset returns the pooled token.
func (v *Vault) Asset() Token { return v.asset }

// begin starts a mutating operation: it rejects overlap with any in-flight
// operation and hands back a scratch copy of the committed state.
func (v *Vault) begin() (*state, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.busy {
		return nil, ErrReentrantCall
	}
	v.busy = true
	return v.st.clone(), nil
}

// commit atomically replaces the committed state with the scratch copy.
func (v *Vault) commit(s *state) {
	v.mu.Lock()
	v.st = s
	v.busy = false
	v.mu.Unlock()
}

// abort discards the scratch copy, leaving committed state untouched.
func (v *Vault) abort() {
	v.mu.Lock()
	v.busy = false
	v.mu.Unlock()
}

// view runs fn against the committed state under the lock. Read-only.
func (v *Vault) view(fn func(s *state)) {
	v.mu.Lock()
	defer v.mu.Unlock()
	fn(v.st)
}

func (s *state) clone() *state {
	c := *s
	c.balances = make(map[string]uint64, len(s.balances))
	for k, b := range s.balances {
		c.balances[k] = b
	}
	c.allowances = make(map[string]map[string]uint64, len(s.allowances))
	for owner, spenders := range s.allowances {
		m := make(map[string]uint64, len(spenders))
		for sp, a := range spenders {
			m[sp] = a
		}
		c.allowances[owner] = m
	}
	c.strategies = make(map[string]*StrategyEntry, len(s.strategies))
	for k, e := range s.strategies {
		ec := *e
		c.strategies[k] = &ec
	}
	return &c
}

// authorize checks that caller holds at least one of the given capabilities.
func (s *state) authorize(caller string, holders ...string) error {
	for _, h := range holders {
		if h != "" && caller == h {
			return nil
		}
	}
	return ErrUnauthorized
}

// totalAssets is the quantity used for share pricing: idle plus deployed
// debt, minus profit still locked from recent reports.
func (s *state) totalAssets() uint64 {
	total := s.idleAssets + s.totalDebt
	locked := s.currentLockedProfit()
	if locked >= total {
		return 0
	}
	return total - locked
}

// mulDiv computes a*b/den with floor rounding, overflow-safe via big.Int.
// Every ratio and fee computation in the engine rounds down through here so
// no operation can mint value out of rounding.
func mulDiv(a, b, den uint64) uint64 {
	if den == 0 {
		return 0
	}
	p := new(big.Int).Mul(new(big.Int).SetUint64(a), new(big.Int).SetUint64(b))
	p.Quo(p, new(big.Int).SetUint64(den))
	return p.Uint64()
}

// mulDiv2 computes a*b/d1/d2 with floor rounding at the end only.
func mulDiv2(a, b, d1, d2 uint64) uint64 {
	if d1 == 0 || d2 == 0 {
		return 0
	}
	p := new(big.Int).Mul(new(big.Int).SetUint64(a), new(big.Int).SetUint64(b))
	den := new(big.Int).Mul(new(big.Int).SetUint64(d1), new(big.Int).SetUint64(d2))
	p.Quo(p, den)
	return p.Uint64()
}

func minU64(a, b uint64) uint64 {
	if a < b {
		return a
	}
	return b
}
