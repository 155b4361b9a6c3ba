package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fioprotocol/fio-provisioner/internal/keys"
	"gopkg.in/yaml.v3"
)

// accountFile is what create and request write to --out.
type accountFile struct {
	AccountName   string       `yaml:"account_name"`
	Creator       string       `yaml:"creator,omitempty"`
	TransactionID string       `yaml:"transaction_id,omitempty"`
	Attempts      int          `yaml:"attempts"`
	OwnerKeys     keys.Keypair `yaml:"owner_keys"`
	ActiveKeys    keys.Keypair `yaml:"active_keys"`
	CreatedAt     time.Time    `yaml:"created_at"`

	FIOName               string `yaml:"fio_name,omitempty"`
	TransferTransactionID string `yaml:"transfer_transaction_id,omitempty"`
	RegisterTransactionID string `yaml:"register_transaction_id,omitempty"`
}

// accountOutput is where create and request put the new account. It is opened before any
// chain call so that an unusable --out fails while nothing has been provisioned yet.
type accountOutput struct {
	w       io.Writer
	path    string
	file    *os.File
	created bool
	written bool
}

// openAccountOutput prepares path for writing with owner-only permissions. An empty path
// writes to w instead. Existing files are only replaced when force is set, and their
// content is kept until the account is written.
func openAccountOutput(w io.Writer, path string, force bool) (*accountOutput, error) {
	out := &accountOutput{w: w, path: path}
	if path == "" {
		return out, nil
	}

	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
	switch {
	case err == nil:
		out.created = true
	case errors.Is(err, os.ErrExist) && force:
		file, err = os.OpenFile(path, os.O_WRONLY, 0600)
		if err != nil {
			return nil, fmt.Errorf("failed to open %s: %w", path, err)
		}
	case errors.Is(err, os.ErrExist):
		return nil, fmt.Errorf("%s already exists, use --force to overwrite", path)
	default:
		return nil, fmt.Errorf("failed to create %s: %w", path, err)
	}
	out.file = file
	return out, nil
}

// Write stores f. If the file cannot be written the YAML goes to w so the keys are not lost.
func (o *accountOutput) Write(f *accountFile) error {
	data, err := yaml.Marshal(f)
	if err != nil {
		return fmt.Errorf("failed to encode account: %w", err)
	}

	if o.file == nil {
		_, err := o.w.Write(data)
		return err
	}

	if err := o.writeFile(data); err != nil {
		_, _ = o.w.Write(data)
		return fmt.Errorf("account %s was printed to stdout because %s could not be written: %w", f.AccountName, o.path, err)
	}
	o.written = true
	fmt.Fprintf(o.w, "Account %s written to %s\n", f.AccountName, o.path)
	return nil
}

func (o *accountOutput) writeFile(data []byte) error {
	defer func() {
		o.file.Close()
		o.file = nil
	}()

	if err := o.file.Chmod(0600); err != nil {
		return err
	}
	if err := o.file.Truncate(0); err != nil {
		return err
	}
	if _, err := o.file.Write(data); err != nil {
		return err
	}
	return o.file.Sync()
}

// Close releases the file. A file created by openAccountOutput and never written is removed.
func (o *accountOutput) Close() error {
	if o.file != nil {
		o.file.Close()
		o.file = nil
	}
	if o.created && !o.written {
		return os.Remove(o.path)
	}
	return nil
}

func readAccountFile(path string) (*accountFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var f accountFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return &f, nil
}
