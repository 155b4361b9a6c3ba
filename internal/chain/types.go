package chain

import "time"

const (
	PermissionOwner  = "owner"
	PermissionActive = "active"
)

// Action is a single contract call bundled into a transaction.
type Action struct {
	Account       string            `json:"account"`
	Name          string            `json:"name"`
	Authorization []PermissionLevel `json:"authorization"`
	Data          any               `json:"data"`
}

type PermissionLevel struct {
	Actor      string `json:"actor"`
	Permission string `json:"permission"`
}

type KeyWeight struct {
	Key    string `json:"key"`
	Weight uint16 `json:"weight"`
}

type PermissionLevelWeight struct {
	Permission PermissionLevel `json:"permission"`
	Weight     uint16          `json:"weight"`
}

type Authority struct {
	Threshold uint32                  `json:"threshold"`
	Keys      []KeyWeight             `json:"keys"`
	Accounts  []PermissionLevelWeight `json:"accounts"`
}

// SingleKeyAuthority is a threshold 1 authority satisfied by key alone.
func SingleKeyAuthority(key string) Authority {
	return Authority{
		Threshold: 1,
		Keys:      []KeyWeight{{Key: key, Weight: 1}},
		Accounts:  []PermissionLevelWeight{},
	}
}

type NewAccount struct {
	Creator string    `json:"creator"`
	Name    string    `json:"name"`
	Owner   Authority `json:"owner"`
	Active  Authority `json:"active"`
}

type BuyRAM struct {
	Payer    string `json:"payer"`
	Receiver string `json:"receiver"`
	Quantity string `json:"quant"`
}

type DelegateBW struct {
	From             string `json:"from"`
	Receiver         string `json:"receiver"`
	StakeNetQuantity string `json:"stake_net_quantity"`
	StakeCPUQuantity string `json:"stake_cpu_quantity"`
	Transfer         bool   `json:"transfer"`
}

type UpdateAuth struct {
	Account    string    `json:"account"`
	Permission string    `json:"permission"`
	Parent     string    `json:"parent"`
	Auth       Authority `json:"auth"`
}

type Transfer struct {
	From     string `json:"from"`
	To       string `json:"to"`
	Quantity string `json:"quantity"`
	Memo     string `json:"memo"`
}

// RegisterName registers a FIO domain or address for requestor.
type RegisterName struct {
	Name      string `json:"name"`
	Requestor string `json:"requestor"`
}

// AccountInfo is the part of get_account the provisioner reports back.
type AccountInfo struct {
	AccountName string       `json:"account_name" yaml:"account_name"`
	Privileged  bool         `json:"privileged" yaml:"privileged"`
	Created     time.Time    `json:"created" yaml:"created"`
	RAMQuota    int64        `json:"ram_quota" yaml:"ram_quota"`
	RAMUsage    int64        `json:"ram_usage" yaml:"ram_usage"`
	Permissions []Permission `json:"permissions" yaml:"permissions"`
}

type Permission struct {
	Name      string    `json:"perm_name" yaml:"perm_name"`
	Parent    string    `json:"parent" yaml:"parent"`
	Authority Authority `json:"required_auth" yaml:"required_auth"`
}

// Permission returns the named permission, or false.
func (a *AccountInfo) Permission(name string) (Permission, bool) {
	for _, p := range a.Permissions {
		if p.Name == name {
			return p, true
		}
	}
	return Permission{}, false
}
