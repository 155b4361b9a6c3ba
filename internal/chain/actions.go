package chain

const (
	actionNewAccount = "newaccount"
	actionBuyRAM     = "buyram"
	actionDelegateBW = "delegatebw"
	actionUpdateAuth = "updateauth"
	actionTransfer   = "transfer"
	actionRegister   = "registername"
)

func activeOf(actor string) []PermissionLevel {
	return []PermissionLevel{{Actor: actor, Permission: PermissionActive}}
}

// NewAccountAction creates name with single key owner and active authorities, paid by creator.
func NewAccountAction(contract, creator, name, ownerKey, activeKey string) Action {
	return Action{
		Account:       contract,
		Name:          actionNewAccount,
		Authorization: activeOf(creator),
		Data: NewAccount{
			Creator: creator,
			Name:    name,
			Owner:   SingleKeyAuthority(ownerKey),
			Active:  SingleKeyAuthority(activeKey),
		},
	}
}

func BuyRAMAction(contract, payer, receiver, quantity string) Action {
	return Action{
		Account:       contract,
		Name:          actionBuyRAM,
		Authorization: activeOf(payer),
		Data: BuyRAM{
			Payer:    payer,
			Receiver: receiver,
			Quantity: quantity,
		},
	}
}

func DelegateBWAction(contract, from, receiver, stakeNet, stakeCPU string, transfer bool) Action {
	return Action{
		Account:       contract,
		Name:          actionDelegateBW,
		Authorization: activeOf(from),
		Data: DelegateBW{
			From:             from,
			Receiver:         receiver,
			StakeNetQuantity: stakeNet,
			StakeCPUQuantity: stakeCPU,
			Transfer:         transfer,
		},
	}
}

// UpdateAuthAction replaces account's permission authority, authorised by account@active.
func UpdateAuthAction(contract, account, permission, parent string, auth Authority) Action {
	return Action{
		Account:       contract,
		Name:          actionUpdateAuth,
		Authorization: activeOf(account),
		Data: UpdateAuth{
			Account:    account,
			Permission: permission,
			Parent:     parent,
			Auth:       auth,
		},
	}
}

func TransferAction(contract, from, to, quantity, memo string) Action {
	return Action{
		Account:       contract,
		Name:          actionTransfer,
		Authorization: activeOf(from),
		Data: Transfer{
			From:     from,
			To:       to,
			Quantity: quantity,
			Memo:     memo,
		},
	}
}

// RegisterNameAction registers name on behalf of requestor, authorised by requestor@active.
func RegisterNameAction(contract, name, requestor string) Action {
	return Action{
		Account:       contract,
		Name:          actionRegister,
		Authorization: activeOf(requestor),
		Data: RegisterName{
			Name:      name,
			Requestor: requestor,
		},
	}
}

// IsNewAccount reports whether a creates an account, returning its data.
func IsNewAccount(a Action) (NewAccount, bool) {
	if a.Name != actionNewAccount {
		return NewAccount{}, false
	}
	data, ok := a.Data.(NewAccount)
	return data, ok
}

// IsUpdateAuth reports whether a updates an authority, returning its data.
func IsUpdateAuth(a Action) (UpdateAuth, bool) {
	if a.Name != actionUpdateAuth {
		return UpdateAuth{}, false
	}
	data, ok := a.Data.(UpdateAuth)
	return data, ok
}
