package ir

import (
	"fortio.org/safecast"

	"kiln/internal/diag"
)

// constRange returns the inclusive value range for a (width, signed) pair.
func constRange(width uint32, signed bool) (int64, uint64) {
	if signed {
		if width >= 64 {
			return -1 << 63, 1<<63 - 1
		}
		minVal := int64(-1) << (width - 1)
		maxVal := uint64(1)<<(width-1) - 1
		return minVal, maxVal
	}
	if width >= 64 {
		return 0, ^uint64(0)
	}
	return 0, uint64(1)<<width - 1
}

// newConst validates value against the (width, signed) range and builds the
// literal node.
func newConst(g *Generator, value int64, width uint32, signed bool) (*Var, error) {
	if width == 0 {
		return nil, diag.Newf(diag.ConstOutOfRange, nil, "constant %d cannot have zero width", value)
	}
	minVal, maxVal := constRange(width, signed)
	if signed {
		if value < minVal {
			return nil, diag.Newf(diag.ConstOutOfRange, nil,
				"%d is smaller than the minimum value (%d) given width %d", value, minVal, width)
		}
		if value > 0 && uint64(value) > maxVal {
			return nil, diag.Newf(diag.ConstOutOfRange, nil,
				"%d is larger than the maximum value (%d) given width %d", value, maxVal, width)
		}
	} else {
		uv, err := safecast.Conv[uint64](value)
		if err != nil {
			return nil, diag.Newf(diag.ConstOutOfRange, nil,
				"%d is negative for an unsigned constant of width %d", value, width)
		}
		if uv > maxVal {
			return nil, diag.Newf(diag.ConstOutOfRange, nil,
				"%d is larger than the maximum value (%d) given width %d", value, maxVal, width)
		}
	}
	c := newVar(g, "", width, signed, ConstValue)
	c.Const = &ConstInfo{Value: value}
	return c, nil
}

// SetConstValue replaces a constant's value, revalidating the range.
func (v *Var) SetConstValue(value int64) error {
	if v.Const == nil {
		return diag.New(diag.Internal, "SetConstValue on a non-constant", v)
	}
	if _, err := newConst(v.Generator, value, v.Width, v.IsSigned); err != nil {
		return err
	}
	v.Const.Value = value
	return nil
}
