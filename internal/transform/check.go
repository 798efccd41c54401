package transform

import "github.com/roach88/optchain/internal/ir"

// CheckSignature validates decl before any synthesis. It returns the first
// problem found, scanning the enclosing context and then the parameters in
// order.
func CheckSignature(decl ir.Declaration) error {
	sig := decl.Sig
	if decl.Enclosing != nil && decl.Enclosing.Trait != nil {
		pos := decl.Enclosing.Pos
		return diagnose(KindTraitImpl, sig, "", pos,
			"impl for trait `%s` is not supported", decl.Enclosing.Trait.String())
	}
	for _, p := range sig.Params {
		switch p.Pattern.Kind {
		case ir.PatWild:
			return diagnose(KindParamPattern, sig, "_", p.Pos,
				"`_` cannot be used for this argument name")
		case ir.PatOther:
			return diagnose(KindParamPattern, sig, p.Pattern.Text, p.Pos,
				"unusable pattern `%s`; a plain identifier is required", p.Pattern.Text)
		case ir.PatReceiver:
			if decl.Enclosing == nil {
				return diagnose(KindParamPattern, sig, receiverLabel(p), p.Pos,
					"receiver `%s` outside an impl block", receiverLabel(p))
			}
		case ir.PatIdent:
			if p.IsTypedSelf() && decl.Enclosing == nil {
				return diagnose(KindParamPattern, sig, "self", p.Pos,
					"receiver `self: %s` outside an impl block", p.Type.String())
			}
			if p.Pattern.Name == ir.SelfStorage || p.Pattern.Name == ir.MarkerName {
				return diagnose(KindReservedName, sig, p.Pattern.Name, p.Pos,
					"`%s` is a reserved name", p.Pattern.Name)
			}
		}
	}
	return nil
}
