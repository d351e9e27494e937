package config

import "testing"

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("ADMINS", "12, 34,abc,-5")
	t.Setenv("MAX_QTY", "50.5")
	t.Setenv("IMAP_SECURE", "нет")
	t.Setenv("SOURCE", " XLSX ")

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.HTTPAddr != ":9090" {
		t.Fatalf("addr=%s", cfg.HTTPAddr)
	}
	if len(cfg.Admins) != 2 || cfg.Admins[0] != 12 || cfg.Admins[1] != 34 {
		t.Fatalf("admins=%v", cfg.Admins)
	}
	if cfg.MaxQty != 50.5 {
		t.Fatalf("maxQty=%v", cfg.MaxQty)
	}
	if cfg.IMAPSecure {
		t.Fatal("imap secure should be false")
	}
	if cfg.Source != "xlsx" {
		t.Fatalf("source=%q", cfg.Source)
	}
}

func TestMaxQtyRejectsNonFinite(t *testing.T) {
	for _, v := range []string{"NaN", "Inf", "-inf", "+Infinity"} {
		t.Setenv("MAX_QTY", v)
		cfg, err := Load()
		if err != nil {
			t.Fatal(err)
		}
		if cfg.MaxQty != 1000 {
			t.Fatalf("MAX_QTY=%s: maxQty=%v", v, cfg.MaxQty)
		}
	}
}

func TestMiniAppURL(t *testing.T) {
	cases := map[string]string{
		"":                        "",
		"bot.example.com/":        "https://bot.example.com/app",
		"http://localhost:8080//": "http://localhost:8080/app",
	}
	for in, want := range cases {
		cfg := Config{WebhookURL: in}
		if got := cfg.MiniAppURL(); got != want {
			t.Fatalf("MiniAppURL(%q)=%q want %q", in, got, want)
		}
	}
}

func TestLocationFallback(t *testing.T) {
	cfg := Config{Timezone: "Nowhere/Invalid"}
	if cfg.Location().String() != "UTC" {
		t.Fatalf("loc=%s", cfg.Location())
	}
}
