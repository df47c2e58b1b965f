// Copyright © NGRSoftlab 2020-2025

package provision

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ngrsoftlab/tierup"
)

func writeTestFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func minimalYAML(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	webScript := writeTestFile(t, dir, "web.sh", "#!/bin/sh\n")
	dbScript := writeTestFile(t, dir, "db.sh", "#!/bin/sh\n")
	pubKey := writeTestFile(t, dir, "id.pub", "ssh-ed25519 AAAA test\n")
	privKey := writeTestFile(t, dir, "id", "key\n")

	return writeTestFile(t, dir, "deploy.yaml", `
name: shop
location: westeurope
credentials:
  subscriptionId: sub-123
admin:
  user: deploy
  publicKeyPath: `+pubKey+`
  privateKeyPath: `+privKey+`
frontend:
  script: `+webScript+`
backend:
  script: `+dbScript+`
`)
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(minimalYAML(t))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if cfg.ResourceGroup != "shop-rg" {
		t.Errorf("ResourceGroup=%q; want shop-rg", cfg.ResourceGroup)
	}
	if cfg.Network.VirtualNetwork != "shop-vnet" {
		t.Errorf("VirtualNetwork=%q; want shop-vnet", cfg.Network.VirtualNetwork)
	}
	if cfg.Network.AddressSpace != "10.20.0.0/16" || cfg.Network.SubnetPrefix != "10.20.1.0/24" {
		t.Errorf("network defaults=%+v", cfg.Network)
	}
	if cfg.Frontend.Name != "shop-web" || cfg.Backend.Name != "shop-db" {
		t.Errorf("tier names=%q,%q; want shop-web, shop-db", cfg.Frontend.Name, cfg.Backend.Name)
	}
	if cfg.Frontend.Size != "Standard_B2s" {
		t.Errorf("frontend size=%q", cfg.Frontend.Size)
	}
	if cfg.Frontend.Image.Publisher != "Canonical" {
		t.Errorf("frontend image=%+v; want Ubuntu default", cfg.Frontend.Image)
	}
	if cfg.Admin.SSHPort != 22 {
		t.Errorf("SSHPort=%d; want 22", cfg.Admin.SSHPort)
	}
	if cfg.Transfer.BlockSize != tierup.DefaultBlockSize {
		t.Errorf("BlockSize=%d; want %d", cfg.Transfer.BlockSize, tierup.DefaultBlockSize)
	}
	if !cfg.Frontend.PublicIP || !cfg.Backend.PublicIP {
		t.Error("both tiers should default to a public address")
	}
}

func TestLoadConfigCredentialsFromEnv(t *testing.T) {
	t.Setenv("AZURE_SUBSCRIPTION_ID", "env-sub")
	t.Setenv("AZURE_TENANT_ID", "env-tenant")
	t.Setenv("AZURE_CLIENT_ID", "env-client")
	t.Setenv("AZURE_CLIENT_SECRET", "env-secret")

	dir := t.TempDir()
	script := writeTestFile(t, dir, "s.sh", "#!/bin/sh\n")
	pub := writeTestFile(t, dir, "id.pub", "ssh-ed25519 AAAA\n")
	priv := writeTestFile(t, dir, "id", "key\n")
	path := writeTestFile(t, dir, "deploy.yaml", `
name: shop
location: westeurope
admin:
  user: deploy
  publicKeyPath: `+pub+`
  privateKeyPath: `+priv+`
frontend:
  script: `+script+`
backend:
  script: `+script+`
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Credentials.SubscriptionID != "env-sub" {
		t.Errorf("SubscriptionID=%q; want env-sub", cfg.Credentials.SubscriptionID)
	}
	if cfg.Credentials.ClientSecret != "env-secret" {
		t.Errorf("ClientSecret=%q; want env-secret", cfg.Credentials.ClientSecret)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoadConfigBadYAML(t *testing.T) {
	path := writeTestFile(t, t.TempDir(), "bad.yaml", "name: [unclosed")
	if _, err := LoadConfig(path); err == nil {
		t.Error("expected parse error")
	}
}

func TestConfigValidate(t *testing.T) {
	dir := t.TempDir()
	script := writeTestFile(t, dir, "s.sh", "x")
	pub := writeTestFile(t, dir, "id.pub", "k")
	priv := writeTestFile(t, dir, "id", "k")

	valid := func() *Config {
		return &Config{
			Name:        "shop",
			Location:    "westeurope",
			Credentials: Credentials{SubscriptionID: "sub"},
			Admin:       AdminConfig{User: "deploy", PublicKeyPath: pub, PrivateKeyPath: priv},
			Frontend:    TierConfig{Name: "web", Script: script},
			Backend:     TierConfig{Name: "db", Script: script},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"no_name", func(c *Config) { c.Name = "" }, "deployment name"},
		{"no_location", func(c *Config) { c.Location = "" }, "location"},
		{"no_subscription", func(c *Config) { c.Credentials.SubscriptionID = "" }, "subscription"},
		{"no_admin_user", func(c *Config) { c.Admin.User = "" }, "admin user"},
		{"no_keys", func(c *Config) { c.Admin.PublicKeyPath = "" }, "SSH key paths"},
		{"negative_block", func(c *Config) { c.Transfer.BlockSize = -1 }, "block size"},
		{"unnamed_tier", func(c *Config) { c.Frontend.Name = "" }, "unnamed tier"},
		{"no_script", func(c *Config) { c.Backend.Script = "" }, "without setup script"},
		{"missing_script", func(c *Config) { c.Backend.Script = filepath.Join(dir, "gone.sh") }, "setup script"},
		{"bad_asset", func(c *Config) { c.Frontend.Assets = []Asset{{Source: "a"}} }, "asset"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := valid()
			tc.mutate(cfg)
			err := cfg.Validate()
			if tc.wantErr == "" {
				if err != nil {
					t.Errorf("Validate: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("err=%v; want containing %q", err, tc.wantErr)
			}
		})
	}
}
