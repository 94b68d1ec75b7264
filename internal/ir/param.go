package ir

import (
	"strconv"

	"kiln/internal/diag"
)

// SetParamValue replaces a parameter's default value.
func (v *Var) SetParamValue(value int64) error {
	if v.Param == nil {
		return diag.New(diag.Internal, "SetParamValue on a non-parameter", v)
	}
	v.Param.Value = value
	return nil
}

// SetParentParam forwards the enclosing generator's parameter when this
// generator is instantiated, instead of the literal default.
func (v *Var) SetParentParam(parent *Var) error {
	if v.Param == nil || parent.Param == nil {
		return diag.New(diag.Internal, "SetParentParam requires two parameters", v, parent)
	}
	v.Param.ParentParam = parent
	return nil
}

// ParamValueStr renders the parameter's default value.
func (v *Var) ParamValueStr() string {
	if v.Param == nil {
		return ""
	}
	return strconv.FormatInt(v.Param.Value, 10)
}

// SetWidthParam declares the var's width through a parameter; the
// declaration renders as "[<param>-1:0]".
func (v *Var) SetWidthParam(param *Var) error {
	if param.Param == nil {
		return diag.New(diag.ConstructionError, "width must reference a parameter", v, param)
	}
	v.WidthParam = param
	return nil
}
