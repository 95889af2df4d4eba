package vault

import "fmt"

// Governance surface: two-phase governance handover, capability-holder
// setters, vault parameters and the sweep rescue.

// SetGovernance nominates a new governance holder. The nomination only takes
// effect once the nominee accepts.
func (v *Vault) SetGovernance(caller, nominee string) error {
	return v.govern(caller, func(s *state) error {
		s.pendingGovernance = nominee
		return nil
	})
}

// AcceptGovernance completes a pending handover. Only the nominee may call.
func (v *Vault) AcceptGovernance(caller string) error {
	s, err := v.begin()
	if err != nil {
		return err
	}
	if s.pendingGovernance == "" || caller != s.pendingGovernance {
		v.abort()
		return fmt.Errorf("caller is not pending governance: %w", ErrUnauthorized)
	}
	s.governance = caller
	s.pendingGovernance = ""
	v.commit(s)
	return nil
}

// SetManagement replaces the management capability holder. Governance only.
func (v *Vault) SetManagement(caller, management string) error {
	return v.govern(caller, func(s *state) error {
		s.management = management
		return nil
	})
}

// SetGuardian replaces the guardian. Governance or the current guardian.
func (v *Vault) SetGuardian(caller, guardian string) error {
	s, err := v.begin()
	if err != nil {
		return err
	}
	if err := s.authorize(caller, s.governance, s.guardian); err != nil {
		v.abort()
		return err
	}
	s.guardian = guardian
	v.commit(s)
	return nil
}

// SetFeeRecipient changes where fee shares are minted. Governance only.
func (v *Vault) SetFeeRecipient(caller, recipient string) error {
	return v.govern(caller, func(s *state) error {
		s.feeRecipient = recipient
		return nil
	})
}

// SetDepositLimit changes the cap on managed assets. Governance only.
func (v *Vault) SetDepositLimit(caller string, limit uint64) error {
	return v.govern(caller, func(s *state) error {
		s.depositLimit = limit
		return nil
	})
}

// SetEmergencyShutdown gates the vault. The guardian may engage the shutdown;
// only governance may lift it.
func (v *Vault) SetEmergencyShutdown(caller string, active bool) error {
	s, err := v.begin()
	if err != nil {
		return err
	}
	if active {
		err = s.authorize(caller, s.governance, s.guardian)
	} else {
		err = s.authorize(caller, s.governance)
	}
	if err != nil {
		v.abort()
		return err
	}
	s.emergencyShutdown = active
	v.commit(s)
	return nil
}

// SetManagementFee changes the time-based fee. Governance only.
func (v *Vault) SetManagementFee(caller string, feeBps uint64) error {
	return v.govern(caller, func(s *state) error {
		if feeBps > MaxBPS {
			return fmt.Errorf("management fee %d over %d: %w", feeBps, MaxBPS, ErrRatioExceeded)
		}
		s.managementFeeBps = feeBps
		return nil
	})
}

// SetPerformanceFee changes the vault-level profit fee. Governance only.
func (v *Vault) SetPerformanceFee(caller string, feeBps uint64) error {
	return v.govern(caller, func(s *state) error {
		if feeBps > MaxBPS {
			return fmt.Errorf("performance fee %d over %d: %w", feeBps, MaxBPS, ErrRatioExceeded)
		}
		s.performanceFeeBps = feeBps
		return nil
	})
}

// SetDispenseRate changes how much of each net profit is smoothed into price
// over the lock duration instead of realized instantly. Governance only.
func (v *Vault) SetDispenseRate(caller string, rateBps uint64) error {
	return v.govern(caller, func(s *state) error {
		if rateBps > MaxBPS {
			return fmt.Errorf("dispense rate %d over %d: %w", rateBps, MaxBPS, ErrRatioExceeded)
		}
		s.settleLockedProfit()
		s.dispenseRateBps = rateBps
		return nil
	})
}

// Sweep rescues a stray token balance sent to the vault, transferring it to
// governance. The vault's own managed asset cannot be swept.
func (v *Vault) Sweep(caller string, token Token, amount uint64) error {
	s, err := v.begin()
	if err != nil {
		return err
	}
	if err := s.authorize(caller, s.governance); err != nil {
		v.abort()
		return err
	}
	if token == nil || token.Address() == v.asset.Address() {
		v.abort()
		return ErrProtectedToken
	}
	if err := token.Transfer(v.address, s.governance, amount); err != nil {
		v.abort()
		return fmt.Errorf("sweep transfer: %w", err)
	}
	v.commit(s)
	return nil
}

func (v *Vault) govern(caller string, apply func(*state) error) error {
	s, err := v.begin()
	if err != nil {
		return err
	}
	if err := s.authorize(caller, s.governance); err != nil {
		v.abort()
		return err
	}
	if err := apply(s); err != nil {
		v.abort()
		return err
	}
	v.commit(s)
	return nil
}

// Info is a read-only snapshot of the vault-level configuration and totals.
type Info struct {
	Address           string `json:"address"`
	AssetAddress      string `json:"asset_address"`
	TotalShares       uint64 `json:"total_shares"`
	TotalAssets       uint64 `json:"total_assets"`
	IdleAssets        uint64 `json:"idle_assets"`
	TotalDebt         uint64 `json:"total_debt"`
	DebtRatioBps      uint64 `json:"debt_ratio_bps"`
	LockedProfit      uint64 `json:"locked_profit"`
	DepositLimit      uint64 `json:"deposit_limit"`
	EmergencyShutdown bool   `json:"emergency_shutdown"`
	PerformanceFeeBps uint64 `json:"performance_fee_bps"`
	ManagementFeeBps  uint64 `json:"management_fee_bps"`
	DispenseRateBps   uint64 `json:"dispense_rate_bps"`
	LastReport        int64  `json:"last_report"`
	Governance        string `json:"governance"`
	PendingGovernance string `json:"pending_governance"`
	Management        string `json:"management"`
	Guardian          string `json:"guardian"`
	FeeRecipient      string `json:"fee_recipient"`
	PricePerShare     uint64 `json:"price_per_share"`
}

// Snapshot returns the current vault-level state.
func (v *Vault) Snapshot() (info Info) {
	v.view(func(s *state) {
		price := v.shareUnit
		if s.totalShares != 0 {
			price = s.convertToAssets(v.shareUnit)
		}
		info = Info{
			Address:           v.address,
			AssetAddress:      v.asset.Address(),
			TotalShares:       s.totalShares,
			TotalAssets:       s.totalAssets(),
			IdleAssets:        s.idleAssets,
			TotalDebt:         s.totalDebt,
			DebtRatioBps:      s.debtRatioBps,
			LockedProfit:      s.currentLockedProfit(),
			DepositLimit:      s.depositLimit,
			EmergencyShutdown: s.emergencyShutdown,
			PerformanceFeeBps: s.performanceFeeBps,
			ManagementFeeBps:  s.managementFeeBps,
			DispenseRateBps:   s.dispenseRateBps,
			LastReport:        s.lastReport,
			Governance:        s.governance,
			PendingGovernance: s.pendingGovernance,
			Management:        s.management,
			Guardian:          s.guardian,
			FeeRecipient:      s.feeRecipient,
			PricePerShare:     price,
		}
	})
	return
}
