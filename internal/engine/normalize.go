package engine

import (
	"strings"

	"github.com/smilemakc/flowgraph/internal/domain"
)

// upgradeAllPieces runs upgradePiece across every piece step in flow. The
// dispatcher calls this after ADD_ACTION, UPDATE_ACTION and UPDATE_TRIGGER
// since those are the only operations that can introduce or change a
// piece's version string.
func (e *Engine) upgradeAllPieces(flow *domain.FlowVersion) *domain.FlowVersion {
	return Transfer(flow, func(step *domain.Step) *domain.Step {
		e.upgradePiece(step)
		return step
	})
}

// upgradePiece rewrites step's piece_version in place per the version-range
// rules: legacy pieces and already-ranged versions are left untouched;
// pre-1.0 versions get a tilde (patch-range) pin; everything else gets a
// caret (minor-range) pin. Non-piece steps are untouched.
func (e *Engine) upgradePiece(step *domain.Step) {
	if step == nil || !step.Kind.IsPiece() {
		return
	}
	settings, err := domain.PieceSettingsOf(step)
	if err != nil || settings.PieceVersion == "" {
		return
	}

	if e.isLegacyPiece(settings.PieceName, settings.PieceVersion) {
		return
	}
	if strings.HasPrefix(settings.PieceVersion, "^") || strings.HasPrefix(settings.PieceVersion, "~") {
		return
	}

	if e.Semver.LessThan(settings.PieceVersion, "1.0.0") {
		settings.PieceVersion = "~" + settings.PieceVersion
	} else {
		settings.PieceVersion = "^" + settings.PieceVersion
	}
	_ = domain.EncodeSettings(step, settings)
}

func (e *Engine) isLegacyPiece(pieceName, version string) bool {
	for _, legacy := range e.LegacyPieces {
		if legacy.Name == pieceName && e.Semver.LessThan(version, legacy.MinVersion) {
			return true
		}
	}
	return false
}

// Normalize returns a flow prepared for publishing: sample-data UI metadata
// is cleared, piece credentials are wiped, and piece versions are upgraded.
// It is idempotent — normalizing an already-normalized flow is a no-op,
// since every rewrite it performs is itself fixpoint-stable (clearing
// already-empty fields, upgrading already-ranged versions is a no-op).
func (e *Engine) Normalize(flow *domain.FlowVersion) *domain.FlowVersion {
	normalized := Transfer(flow, func(step *domain.Step) *domain.Step {
		if !step.Kind.IsPiece() {
			return step
		}
		settings, err := domain.PieceSettingsOf(step)
		if err != nil {
			return step
		}
		settings.InputUIInfo = &domain.InputUIInfo{}
		if settings.Input == nil {
			settings.Input = map[string]any{}
		}
		settings.Input["auth"] = ""
		_ = domain.EncodeSettings(step, settings)
		return step
	})
	return e.upgradeAllPieces(normalized)
}
