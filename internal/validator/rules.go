package validator

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/stagelink-labs/stagelink/internal/asset"
	"github.com/stagelink-labs/stagelink/internal/stage"
)

// Rule inspects a single prim and records any findings on the report.
// A non-nil error aborts the whole run; rule failures are issues, not errors.
type Rule interface {
	Name() string
	Description() string
	CheckPrim(ctx context.Context, prim *stage.Prim, target Target, report *Report) error
}

// hasMaterialBinding reports whether any property on the prim is a
// material:binding relationship, direct or purposed.
func hasMaterialBinding(prim *stage.Prim) bool {
	for _, attr := range prim.Attrs() {
		if strings.HasPrefix(attr.Name, "material:binding") {
			return true
		}
	}
	return false
}

// ExtentsChecker flags geometric prims that carry no extent attribute.
// Renderers cull by extent, so a gprim without one is invisible to
// bounds-based consumers.
type ExtentsChecker struct{}

func NewExtentsChecker() *ExtentsChecker { return &ExtentsChecker{} }

func (c *ExtentsChecker) Name() string { return "extents" }

func (c *ExtentsChecker) Description() string {
	return "Every geometric prim must carry an extent attribute."
}

func (c *ExtentsChecker) CheckPrim(_ context.Context, prim *stage.Prim, _ Target, report *Report) error {
	if !prim.IsGeometric() {
		return nil
	}
	if !prim.HasAttr("extent") {
		report.add(Issue{
			Rule: c.Name(),
			Prim: prim.Path(),
			Message: fmt.Sprintf("%s %q has no authored extent",
				prim.Type(), prim.Name()),
		})
	}
	return nil
}

// GeomSubsetChecker verifies that a GeomSubset carrying a material binding
// declares the materialBind family name, as the binding schema requires.
type GeomSubsetChecker struct{}

func NewGeomSubsetChecker() *GeomSubsetChecker { return &GeomSubsetChecker{} }

func (c *GeomSubsetChecker) Name() string { return "geom-subset" }

func (c *GeomSubsetChecker) Description() string {
	return "A GeomSubset with a material binding must set familyName to materialBind."
}

func (c *GeomSubsetChecker) CheckPrim(_ context.Context, prim *stage.Prim, _ Target, report *Report) error {
	if prim.Type() != stage.TypeGeomSubset {
		return nil
	}
	if !hasMaterialBinding(prim) {
		return nil
	}
	family, ok := prim.Attr("familyName")
	if tok, isTok := family.(stage.Token); !ok || !isTok || tok != "materialBind" {
		report.add(Issue{
			Rule: c.Name(),
			Prim: prim.Path(),
			Message: fmt.Sprintf("GeomSubset %q has a material binding but no valid family name attribute",
				prim.Name()),
		})
	}
	return nil
}

// MaterialBindingChecker verifies that prims binding a material have the
// MaterialBindingAPI applied.
type MaterialBindingChecker struct{}

func NewMaterialBindingChecker() *MaterialBindingChecker { return &MaterialBindingChecker{} }

func (c *MaterialBindingChecker) Name() string { return "material-binding-api" }

func (c *MaterialBindingChecker) Description() string {
	return "Prims with a material binding must have the MaterialBindingAPI applied."
}

func (c *MaterialBindingChecker) CheckPrim(_ context.Context, prim *stage.Prim, _ Target, report *Report) error {
	if prim.HasAPI(stage.APIMaterialBinding) {
		return nil
	}
	if hasMaterialBinding(prim) {
		report.add(Issue{
			Rule: c.Name(),
			Prim: prim.Path(),
			Message: fmt.Sprintf("prim %q has a material binding but does not have the MaterialBindingAPI",
				prim.Name()),
		})
	}
	return nil
}

// MissingReferenceChecker resolves every reference and payload through the
// asset client and flags targets that do not exist. It needs a client, so
// it is not part of the default rule set.
type MissingReferenceChecker struct {
	client asset.Client
}

func NewMissingReferenceChecker(client asset.Client) *MissingReferenceChecker {
	return &MissingReferenceChecker{client: client}
}

func (c *MissingReferenceChecker) Name() string { return "missing-reference" }

func (c *MissingReferenceChecker) Description() string {
	return "References and payloads must resolve to existing assets."
}

func (c *MissingReferenceChecker) CheckPrim(ctx context.Context, prim *stage.Prim, target Target, report *Report) error {
	check := func(kind string, ref stage.AssetRef) error {
		resolved := resolveRef(target.StageURL, string(ref))
		_, err := c.client.Stat(ctx, resolved)
		if errors.Is(err, asset.ErrNotFound) {
			report.add(Issue{
				Rule: c.Name(),
				Prim: prim.Path(),
				Message: fmt.Sprintf("%s @%s@ does not resolve (checked %s)",
					kind, ref, resolved),
			})
			return nil
		}
		return err
	}
	for _, ref := range prim.References() {
		if err := check("reference", ref); err != nil {
			return err
		}
	}
	for _, ref := range prim.Payloads() {
		if err := check("payload", ref); err != nil {
			return err
		}
	}
	return nil
}

// resolveRef turns a reference target into an absolute location. Targets
// that already carry a scheme pass through; relative ones resolve against
// the folder containing the stage.
func resolveRef(stageURL, ref string) string {
	if asset.IsHubURL(ref) || strings.HasPrefix(ref, "/") {
		return ref
	}
	base, err := asset.ParseURL(stageURL)
	if err != nil {
		return ref
	}
	return base.Parent().Join(ref).String()
}
