// Package typebind provides the runtime side of typed REST client bindings:
//
// - Runtime values the codec produces and consumes (Option, Batch, Pair, Triple, Mod, Map, Object, Date, DateTime)
// - A stable error model via Issues (JSON Pointer, code, message) and ContractError for misuse
// - JSON input handling with depth/size enforcement (ParseJSON)
//
// Design policy:
// - Keep only public value types and the error model in the root package.
// - The schema IR lives in model/, field resolution in resolve/, field selection
//   in partial/, the codec in engine/ and the CLI under cmd/typebind.
// - Prefer black-box testing against public APIs.
//
// Typical usage:
//
//	m, err := model.LoadFile("schema.yml")
//	res, diags := resolve.Resolve(m)
//	eng, err := engine.New(res)
//	widget, err := eng.EntityCodec("Widget")
//	sel, err := partial.Parse(res, widget.Type(), "id,name,owner(id)")
//	v, err := widget.DecodeFrom(ctx, typebind.JSONBytes(data), sel)
package typebind
