package supaq

import (
	"context"
)

// BeginTransaction opens a transaction on the client. All subsequent Read,
// Write, Update, Delete, Execute and CallProcedure calls route through it
// until Commit or Rollback. It fails with ErrTxStarted when a transaction
// is already active and ErrNoConnection when the client is closed.
func (c *Client) BeginTransaction(ctx context.Context) error {
	if c.closed {
		return ErrNoConnection
	}
	if c.tx != nil {
		return ErrTxStarted
	}
	tx, err := c.drv.Tx(ctx)
	if err != nil {
		return NewTxError("begin", err)
	}
	c.tx = tx
	c.log.Info("transaction started", "session", c.session)
	return nil
}

// Commit commits the active transaction. The client returns to the idle
// state even when the driver commit fails; the failure is reported as a
// *TxError. Fails with ErrNoActiveTx when no transaction is active.
func (c *Client) Commit() error {
	if c.tx == nil {
		return ErrNoActiveTx
	}
	err := c.tx.Commit()
	c.tx = nil
	if err != nil {
		return NewTxError("commit", err)
	}
	c.log.Info("transaction committed", "session", c.session)
	return nil
}

// Rollback aborts the active transaction. Like Commit, the client returns
// to idle unconditionally. Fails with ErrNoActiveTx when no transaction is
// active.
func (c *Client) Rollback() error {
	if c.tx == nil {
		return ErrNoActiveTx
	}
	err := c.tx.Rollback()
	c.tx = nil
	if err != nil {
		return NewTxError("rollback", err)
	}
	c.log.Info("transaction rolled back", "session", c.session)
	return nil
}

// InTransaction reports whether a transaction is currently active.
func (c *Client) InTransaction() bool {
	return c.tx != nil
}
