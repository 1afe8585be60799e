package hcl

import (
	"context"
	"fmt"
	"reflect"

	"github.com/hashicorp/hcl/v2"
	"github.com/vk/fmexport/internal/ctxlog"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/gocty"
)

// decodeExpr evaluates a literal expression without variables and decodes
// it into goVal. ok is false when the expression is null (absent).
func decodeExpr(ctx context.Context, expr hcl.Expression, goVal any) (bool, hcl.Diagnostics) {
	val, diags := expr.Value(nil)
	if diags.HasErrors() {
		return false, diags
	}
	if val.IsNull() {
		return false, nil
	}
	if err := decodeValue(ctx, val, goVal); err != nil {
		return false, hcl.Diagnostics{{
			Severity: hcl.DiagError,
			Summary:  "Invalid value",
			Detail:   err.Error(),
			Subject:  expr.Range().Ptr(),
		}}
	}
	return true, nil
}

// decodeValue converts val to the cty type implied by goVal's Go type and
// decodes it into goVal.
func decodeValue(ctx context.Context, val cty.Value, goVal any) error {
	logger := ctxlog.FromContext(ctx)
	valPtr := reflect.ValueOf(goVal)
	if valPtr.Kind() != reflect.Ptr {
		return fmt.Errorf("target for decoding must be a pointer, got %T", goVal)
	}

	impliedType, err := gocty.ImpliedType(valPtr.Elem().Interface())
	if err != nil {
		return fmt.Errorf("unsupported decode target %T: %w", goVal, err)
	}

	converted, err := convert.Convert(val, impliedType)
	if err != nil {
		return fmt.Errorf("cannot convert %s to %s: %w", val.Type().FriendlyName(), impliedType.FriendlyName(), err)
	}
	if !val.Type().Equals(converted.Type()) {
		logger.Debug("Implicitly converted value type.",
			"from", val.Type().FriendlyName(),
			"to", converted.Type().FriendlyName(),
		)
	}
	return gocty.FromCtyValue(converted, goVal)
}

// numberValue returns the float64 held by a literal cty value.
func numberValue(val cty.Value) (float64, error) {
	num, err := convert.Convert(val, cty.Number)
	if err != nil {
		return 0, err
	}
	if num.IsNull() || !num.IsKnown() {
		return 0, fmt.Errorf("number is null or unknown")
	}
	var f float64
	if err := gocty.FromCtyValue(num, &f); err != nil {
		return 0, err
	}
	return f, nil
}
