package eosclient

import (
	"fmt"

	eos "github.com/eoscanada/eos-go"
	"github.com/eoscanada/eos-go/ecc"
	"github.com/fioprotocol/fio-provisioner/internal/chain"
	"github.com/fioprotocol/fio-provisioner/internal/keys"
)

// Field order of these structs is the binary layout of the eosio system actions.

type newAccountData struct {
	Creator eos.AccountName `json:"creator"`
	Name    eos.AccountName `json:"name"`
	Owner   eos.Authority   `json:"owner"`
	Active  eos.Authority   `json:"active"`
}

type buyRAMData struct {
	Payer    eos.AccountName `json:"payer"`
	Receiver eos.AccountName `json:"receiver"`
	Quantity eos.Asset       `json:"quant"`
}

type delegateBWData struct {
	From             eos.AccountName `json:"from"`
	Receiver         eos.AccountName `json:"receiver"`
	StakeNetQuantity eos.Asset       `json:"stake_net_quantity"`
	StakeCPUQuantity eos.Asset       `json:"stake_cpu_quantity"`
	Transfer         bool            `json:"transfer"`
}

type updateAuthData struct {
	Account    eos.AccountName    `json:"account"`
	Permission eos.PermissionName `json:"permission"`
	Parent     eos.PermissionName `json:"parent"`
	Auth       eos.Authority      `json:"auth"`
}

type transferData struct {
	From     eos.AccountName `json:"from"`
	To       eos.AccountName `json:"to"`
	Quantity eos.Asset       `json:"quantity"`
	Memo     string          `json:"memo"`
}

type registerNameData struct {
	Name      string          `json:"name"`
	Requestor eos.AccountName `json:"requestor"`
}

func toEOSAction(a chain.Action) (*eos.Action, error) {
	data, err := toEOSData(a.Data)
	if err != nil {
		return nil, err
	}

	auth := make([]eos.PermissionLevel, len(a.Authorization))
	for i, p := range a.Authorization {
		auth[i] = toPermissionLevel(p)
	}

	return &eos.Action{
		Account:       eos.AN(a.Account),
		Name:          eos.ActN(a.Name),
		Authorization: auth,
		ActionData:    eos.NewActionData(data),
	}, nil
}

func toEOSData(data any) (any, error) {
	switch d := data.(type) {
	case chain.NewAccount:
		owner, err := toAuthority(d.Owner)
		if err != nil {
			return nil, fmt.Errorf("owner authority: %w", err)
		}
		active, err := toAuthority(d.Active)
		if err != nil {
			return nil, fmt.Errorf("active authority: %w", err)
		}
		return newAccountData{
			Creator: eos.AN(d.Creator),
			Name:    eos.AN(d.Name),
			Owner:   owner,
			Active:  active,
		}, nil
	case chain.BuyRAM:
		quant, err := eos.NewAssetFromString(d.Quantity)
		if err != nil {
			return nil, fmt.Errorf("ram quantity %q: %w", d.Quantity, err)
		}
		return buyRAMData{Payer: eos.AN(d.Payer), Receiver: eos.AN(d.Receiver), Quantity: quant}, nil
	case chain.DelegateBW:
		net, err := eos.NewAssetFromString(d.StakeNetQuantity)
		if err != nil {
			return nil, fmt.Errorf("net quantity %q: %w", d.StakeNetQuantity, err)
		}
		cpu, err := eos.NewAssetFromString(d.StakeCPUQuantity)
		if err != nil {
			return nil, fmt.Errorf("cpu quantity %q: %w", d.StakeCPUQuantity, err)
		}
		return delegateBWData{
			From:             eos.AN(d.From),
			Receiver:         eos.AN(d.Receiver),
			StakeNetQuantity: net,
			StakeCPUQuantity: cpu,
			Transfer:         d.Transfer,
		}, nil
	case chain.UpdateAuth:
		auth, err := toAuthority(d.Auth)
		if err != nil {
			return nil, err
		}
		return updateAuthData{
			Account:    eos.AN(d.Account),
			Permission: eos.PN(d.Permission),
			Parent:     eos.PN(d.Parent),
			Auth:       auth,
		}, nil
	case chain.Transfer:
		quant, err := eos.NewAssetFromString(d.Quantity)
		if err != nil {
			return nil, fmt.Errorf("transfer quantity %q: %w", d.Quantity, err)
		}
		return transferData{From: eos.AN(d.From), To: eos.AN(d.To), Quantity: quant, Memo: d.Memo}, nil
	case chain.RegisterName:
		return registerNameData{Name: d.Name, Requestor: eos.AN(d.Requestor)}, nil
	default:
		return nil, fmt.Errorf("unsupported action data %T", data)
	}
}

func toAuthority(a chain.Authority) (eos.Authority, error) {
	out := eos.Authority{
		Threshold: a.Threshold,
		Keys:      make([]eos.KeyWeight, 0, len(a.Keys)),
		Accounts:  make([]eos.PermissionLevelWeight, 0, len(a.Accounts)),
		Waits:     []eos.WaitWeight{},
	}
	for _, k := range a.Keys {
		pub, err := toPublicKey(k.Key)
		if err != nil {
			return eos.Authority{}, err
		}
		out.Keys = append(out.Keys, eos.KeyWeight{PublicKey: pub, Weight: k.Weight})
	}
	for _, acc := range a.Accounts {
		out.Accounts = append(out.Accounts, eos.PermissionLevelWeight{
			Permission: toPermissionLevel(acc.Permission),
			Weight:     acc.Weight,
		})
	}
	return out, nil
}

// toPublicKey re-renders key with the prefix eos-go is configured to parse.
func toPublicKey(key string) (ecc.PublicKey, error) {
	legacy, err := keys.WithPrefix(key, ecc.PublicKeyPrefixCompat)
	if err != nil {
		return ecc.PublicKey{}, err
	}
	return ecc.NewPublicKey(legacy)
}

func toPermissionLevel(p chain.PermissionLevel) eos.PermissionLevel {
	return eos.PermissionLevel{
		Actor:      eos.AN(p.Actor),
		Permission: eos.PN(p.Permission),
	}
}
