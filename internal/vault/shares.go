package vault

import "fmt"

// Share ledger: conversion math, deposit/mint entry points and the standard
// fungible-token surface for the claim shares.

func (s *state) convertToShares(assets uint64) uint64 {
	if s.totalShares == 0 {
		// 1:1 bootstrap
		return assets
	}
	ta := s.totalAssets()
	if ta == 0 {
		return 0
	}
	return mulDiv(assets, s.totalShares, ta)
}

func (s *state) convertToAssets(shares uint64) uint64 {
	if s.totalShares == 0 {
		return 0
	}
	return mulDiv(shares, s.totalAssets(), s.totalShares)
}

// ConvertToShares returns the share amount assets is currently worth.
func (v *Vault) ConvertToShares(assets uint64) (shares uint64) {
	v.view(func(s *state) { shares = s.convertToShares(assets) })
	return
}

// ConvertToAssets returns the asset amount shares is currently worth.
func (v *Vault) ConvertToAssets(shares uint64) (assets uint64) {
	v.view(func(s *state) { assets = s.convertToAssets(shares) })
	return
}

// PricePerShare returns the asset value of one whole share unit.
func (v *Vault) PricePerShare() (price uint64) {
	v.view(func(s *state) {
		if s.totalShares == 0 {
			price = v.shareUnit
			return
		}
		price = s.convertToAssets(v.shareUnit)
	})
	return
}

// TotalSupply returns the total issued shares.
func (v *Vault) TotalSupply() (supply uint64) {
	v.view(func(s *state) { supply = s.totalShares })
	return
}

// TotalAssets returns idle assets plus deployed debt minus locked profit.
func (v *Vault) TotalAssets() (assets uint64) {
	v.view(func(s *state) { assets = s.totalAssets() })
	return
}

// TotalDebt returns the assets currently deployed to strategies.
func (v *Vault) TotalDebt() (debt uint64) {
	v.view(func(s *state) { debt = s.totalDebt })
	return
}

// IdleAssets returns the assets held directly by the vault.
func (v *Vault) IdleAssets() (idle uint64) {
	v.view(func(s *state) { idle = s.idleAssets })
	return
}

// LockedProfit returns the reported gain not yet released into share price.
func (v *Vault) LockedProfit() (locked uint64) {
	v.view(func(s *state) { locked = s.currentLockedProfit() })
	return
}

// BalanceOf returns holder's share balance.
func (v *Vault) BalanceOf(holder string) (balance uint64) {
	v.view(func(s *state) { balance = s.balances[holder] })
	return
}

// Allowance returns the remaining approval from owner to spender.
func (v *Vault) Allowance(owner, spender string) (remaining uint64) {
	v.view(func(s *state) { remaining = s.allowances[owner][spender] })
	return
}

// depositRoom is the asset amount still acceptable under the deposit limit.
func (s *state) depositRoom() uint64 {
	held := s.idleAssets + s.totalDebt
	if s.emergencyShutdown || held >= s.depositLimit {
		return 0
	}
	return s.depositLimit - held
}

// MaxDeposit returns the asset amount receiver could deposit right now,
// 0 under shutdown or at the limit.
func (v *Vault) MaxDeposit(string) (assets uint64) {
	v.view(func(s *state) { assets = s.depositRoom() })
	return
}

// MaxMint returns the share amount receiver could mint right now.
func (v *Vault) MaxMint(string) (shares uint64) {
	v.view(func(s *state) { shares = s.convertToShares(s.depositRoom()) })
	return
}

// PreviewDeposit projects the shares a deposit would mint, 0 if the deposit
// would be rejected.
func (v *Vault) PreviewDeposit(assets uint64) (shares uint64) {
	v.view(func(s *state) {
		if assets > s.depositRoom() {
			return
		}
		shares = s.convertToShares(assets)
	})
	return
}

// PreviewMint projects the assets a mint would require, 0 if the mint would
// be rejected.
func (v *Vault) PreviewMint(shares uint64) (assets uint64) {
	v.view(func(s *state) {
		required := shares
		if s.totalShares != 0 {
			required = s.convertToAssets(shares)
		}
		if required > s.depositRoom() {
			return
		}
		assets = required
	})
	return
}

// Deposit takes assets from caller, mints proportional shares to receiver and
// adds the assets to the idle balance. Fails with ErrLimitExceeded when the
// vault is shut down or the deposit limit would be crossed.
func (v *Vault) Deposit(caller string, assets uint64, receiver string) (uint64, error) {
	s, err := v.begin()
	if err != nil {
		return 0, err
	}
	shares, err := v.depositInto(s, caller, assets, receiver)
	if err != nil {
		v.abort()
		return 0, err
	}
	v.commit(s)
	return shares, nil
}

// Mint is the share-denominated deposit entry point: it resolves the assets
// required for exactly shares and applies the same effects as Deposit.
func (v *Vault) Mint(caller string, shares uint64, receiver string) (uint64, error) {
	s, err := v.begin()
	if err != nil {
		return 0, err
	}
	assets := shares
	if s.totalShares != 0 {
		assets = s.convertToAssets(shares)
	}
	if _, err := v.depositInto(s, caller, assets, receiver); err != nil {
		v.abort()
		return 0, err
	}
	v.commit(s)
	return assets, nil
}

func (v *Vault) depositInto(s *state, caller string, assets uint64, receiver string) (uint64, error) {
	if s.emergencyShutdown {
		return 0, fmt.Errorf("vault is shut down: %w", ErrLimitExceeded)
	}
	if assets > s.depositRoom() {
		return 0, fmt.Errorf("deposit of %d over limit %d: %w", assets, s.depositLimit, ErrLimitExceeded)
	}
	// Shares are priced before the deposit is applied.
	shares := s.convertToShares(assets)
	if err := v.asset.Transfer(caller, v.address, assets); err != nil {
		return 0, fmt.Errorf("asset transfer: %w", err)
	}
	s.balances[receiver] += shares
	s.totalShares += shares
	s.idleAssets += assets
	return shares, nil
}

// Transfer moves shares between holders.
func (v *Vault) Transfer(caller, to string, amount uint64) error {
	s, err := v.begin()
	if err != nil {
		return err
	}
	if err := s.transferShares(caller, to, amount); err != nil {
		v.abort()
		return err
	}
	v.commit(s)
	return nil
}

// TransferFrom moves shares on behalf of owner, spending caller's allowance
// unless caller is the owner.
func (v *Vault) TransferFrom(caller, owner, to string, amount uint64) error {
	s, err := v.begin()
	if err != nil {
		return err
	}
	if err := s.spendAllowance(owner, caller, amount); err != nil {
		v.abort()
		return err
	}
	if err := s.transferShares(owner, to, amount); err != nil {
		v.abort()
		return err
	}
	v.commit(s)
	return nil
}

// Approve sets spender's allowance over caller's shares. UnlimitedAllowance
// is a sentinel that is never decremented on spend.
func (v *Vault) Approve(caller, spender string, amount uint64) error {
	s, err := v.begin()
	if err != nil {
		return err
	}
	if s.allowances[caller] == nil {
		s.allowances[caller] = make(map[string]uint64)
	}
	s.allowances[caller][spender] = amount
	v.commit(s)
	return nil
}

func (s *state) transferShares(from, to string, amount uint64) error {
	if s.balances[from] < amount {
		return fmt.Errorf("share balance %d < %d: %w", s.balances[from], amount, ErrInsufficientBalance)
	}
	s.balances[from] -= amount
	s.balances[to] += amount
	return nil
}

func (s *state) spendAllowance(owner, spender string, amount uint64) error {
	if owner == spender {
		return nil
	}
	remaining := s.allowances[owner][spender]
	if remaining == UnlimitedAllowance {
		return nil
	}
	if remaining < amount {
		return fmt.Errorf("allowance %d < %d: %w", remaining, amount, ErrInsufficientAllowance)
	}
	s.allowances[owner][spender] = remaining - amount
	return nil
}
