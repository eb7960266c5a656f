// internal/bridge/callbacks.go
package bridge

import (
	"github.com/sirupsen/logrus"

	"github.com/tamzrod/opcua-bridge/internal/ua"
)

// onRead serves a client read from the shadow cache. It never touches
// the live image, never takes the scan lock, and never blocks. A missing
// or stale binding yields Good with no value, which clients render as an
// absent sample rather than an error.
func (b *Bridge) onRead(handle uint64, out *ua.DataValue) ua.StatusCode {
	bd := b.lookupBinding(handle)
	if bd == nil {
		out.HasValue = false
		out.Status = ua.StatusGood
		out.HasStatus = true
		return ua.StatusGood
	}

	if b.opt.SuppressReadValue {
		out.HasValue = false
	} else {
		out.Value = bd.shadowValue()
		out.HasValue = true
	}
	out.Status = ua.StatusGood
	out.HasStatus = true
	return ua.StatusGood
}

// onWrite applies a client write to both the image slot and the shadow
// cell under one scan-lock acquisition, so a concurrent publish can
// never observe a half-applied write. The declared type must match
// exactly; there is no widening.
func (b *Bridge) onWrite(handle uint64, in ua.DataValue) ua.StatusCode {
	bd := b.lookupBinding(handle)
	if bd == nil || !in.HasValue {
		return ua.StatusBadInternalError
	}

	if !in.Value.Type().Valid() || in.Value.Type() != bd.typ {
		b.log.WithFields(logrus.Fields{
			"node":     bd.nodeID.String(),
			"declared": bd.typ.String(),
			"got":      in.Value.Type().String(),
			"status":   ua.StatusBadTypeMismatch.String(),
		}).Warn("write rejected")
		return ua.StatusBadTypeMismatch
	}

	b.img.Lock()
	err := bd.cell.Store(in.Value)
	if err == nil {
		bd.setShadow(in.Value)
	}
	b.img.Unlock()

	if err != nil {
		b.log.WithError(err).WithField("node", bd.nodeID.String()).Warn("write rejected")
		return ua.StatusBadTypeMismatch
	}
	return ua.StatusGood
}
