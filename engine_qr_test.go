package cylink

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
)

func TestQRDesignFor(t *testing.T) {
	engine := buildDashboardEngine(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/qr/lnk_1" {
			t.Errorf("path = %q", r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(QRDesign{
			LinkID:          "lnk_1",
			ForegroundColor: "#000000",
			BackgroundColor: "#ffffff",
			Size:            512,
		})
	})

	design, err := engine.QRDesignFor(context.Background(), "lnk_1")
	if err != nil {
		t.Fatalf("QRDesignFor failed: %v", err)
	}
	if design.Size != 512 {
		t.Fatalf("design = %+v", design)
	}
}

func TestUpdateQRDesignValidation(t *testing.T) {
	engine := buildDashboardEngine(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("invalid design reached the backend")
	})

	valid := QRDesign{
		LinkID:          "lnk_1",
		ForegroundColor: "#1a2b3c",
		BackgroundColor: "#ffffff",
		Size:            256,
	}

	cases := []func(QRDesign) QRDesign{
		func(d QRDesign) QRDesign { d.LinkID = ""; return d },
		func(d QRDesign) QRDesign { d.ForegroundColor = "red"; return d },
		func(d QRDesign) QRDesign { d.ForegroundColor = "#12345"; return d },
		func(d QRDesign) QRDesign { d.BackgroundColor = "#gghhii"; return d },
		func(d QRDesign) QRDesign { d.Size = 32; return d },
		func(d QRDesign) QRDesign { d.Size = 4096; return d },
	}
	for i, mutate := range cases {
		if _, err := engine.UpdateQRDesign(context.Background(), mutate(valid)); !errors.Is(err, ErrInvalidQRDesign) {
			t.Fatalf("case %d = %v, want ErrInvalidQRDesign", i, err)
		}
	}
}

func TestUpdateQRDesign(t *testing.T) {
	engine := buildDashboardEngine(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut || r.URL.Path != "/qr/lnk_1" {
			t.Errorf("%s %s", r.Method, r.URL.Path)
		}
		var design QRDesign
		_ = json.NewDecoder(r.Body).Decode(&design)
		_ = json.NewEncoder(w).Encode(design)
	})

	design, err := engine.UpdateQRDesign(context.Background(), QRDesign{
		LinkID:          "lnk_1",
		ForegroundColor: "#1A2B3C",
		BackgroundColor: "#FFFFFF",
		Size:            1024,
		IncludeLogo:     true,
	})
	if err != nil {
		t.Fatalf("UpdateQRDesign failed: %v", err)
	}
	if !design.IncludeLogo || design.Size != 1024 {
		t.Fatalf("design = %+v", design)
	}
	if got := engine.MetricsSnapshot().Counters[MetricQRUpdated]; got != 1 {
		t.Fatalf("updated counter = %d", got)
	}
}
