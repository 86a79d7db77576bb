package entity

import (
	"errors"
	"strings"
	"testing"

	"github.com/ggorockee/reviewmaps-alerts/internal/domain/common/errorz"
)

func TestAlertTypeTable(t *testing.T) {
	tests := []struct {
		alertType ActivityAlertType
		dDay      string
	}{
		{BookmarkDeadlineD1, "D-1"},
		{BookmarkDeadlineDDay, "D-Day"},
		{ApplyResultDDay, "D-Day"},
		{SelectedVisitD3, "D-3"},
		{SelectedVisitDDay, "D-Day"},
		{ReviewingDeadlineD3, "D-3"},
		{ReviewingDeadlineDDay, "D-Day"},
	}

	for _, tt := range tests {
		t.Run(string(tt.alertType), func(t *testing.T) {
			if !tt.alertType.Valid() {
				t.Fatal("expected valid type")
			}
			if tt.alertType.Category() == "" {
				t.Fatal("expected a category title")
			}
			if got := tt.alertType.DDayLabel(); got != tt.dDay {
				t.Fatalf("expected label %q, got %q", tt.dDay, got)
			}

			body, err := tt.alertType.Render("맛집 체험")
			if err != nil {
				t.Fatalf("Render failed: %v", err)
			}
			if !strings.Contains(body, "맛집 체험") {
				t.Fatalf("body %q does not mention the campaign", body)
			}
		})
	}
}

func TestRenderUnknownType(t *testing.T) {
	_, err := ActivityAlertType("SOMETHING_ELSE").Render("x")
	if !errors.Is(err, errorz.ErrUnknownAlertType) {
		t.Fatalf("expected ErrUnknownAlertType, got %v", err)
	}
}
