package batch

import (
	"errors"
	"fmt"

	"github.com/batchledger/batchledger/host"
	"github.com/batchledger/batchledger/keyvaluedb"
	"github.com/batchledger/batchledger/types"
)

var (
	ErrAlreadyInitialized = errors.New("contract already initialized")
	ErrNotInitialized     = errors.New("contract not initialized")
	ErrUnauthorized       = errors.New("unauthorized")
)

// AccessController holds the single privileged identity of one engine and
// gates every mutating entry point. Sole writer of the admin record.
type AccessController struct {
	key []byte
}

func NewAccessController(namespace string) *AccessController {
	return &AccessController{key: []byte(namespace + "/admin")}
}

// Initialize stores the admin identity. Fails if the engine has been
// initialized before, the stored admin can only be changed via SetAdmin.
func (a *AccessController) Initialize(c *host.CallContext, admin types.Address) error {
	if len(admin) == 0 {
		return errors.New("admin address is empty")
	}
	var current types.Address
	found, err := c.Read(a.key, &current)
	if err != nil {
		return fmt.Errorf("reading admin record: %w", err)
	}
	if found {
		return ErrAlreadyInitialized
	}
	return c.Write(a.key, admin)
}

// RequireAdmin fails unless the caller is the stored admin and has proven
// control of that identity for this call. Called before any side effect of
// every mutating entry point.
func (a *AccessController) RequireAdmin(c *host.CallContext, caller types.Address) error {
	var admin types.Address
	found, err := c.Read(a.key, &admin)
	if err != nil {
		return fmt.Errorf("reading admin record: %w", err)
	}
	if !found {
		return ErrNotInitialized
	}
	if !admin.Eq(caller) || !c.Authorized(caller) {
		return ErrUnauthorized
	}
	return nil
}

// SetAdmin rotates the privileged identity.
func (a *AccessController) SetAdmin(c *host.CallContext, caller, newAdmin types.Address) error {
	if err := a.RequireAdmin(c, caller); err != nil {
		return err
	}
	if len(newAdmin) == 0 {
		return errors.New("new admin address is empty")
	}
	return c.Write(a.key, newAdmin)
}

// Admin returns the stored admin identity.
func (a *AccessController) Admin(r keyvaluedb.Reader) (types.Address, error) {
	var admin types.Address
	found, err := r.Read(a.key, &admin)
	if err != nil {
		return nil, fmt.Errorf("reading admin record: %w", err)
	}
	if !found {
		return nil, ErrNotInitialized
	}
	return admin, nil
}
