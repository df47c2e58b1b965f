// Copyright © NGRSoftlab 2020-2025

package provision

import (
	"os"

	"github.com/juju/errors"
	"gopkg.in/yaml.v3"

	"github.com/ngrsoftlab/tierup"
)

const (
	defaultAddressSpace = "10.20.0.0/16"
	defaultSubnetPrefix = "10.20.1.0/24"
	defaultSSHPort      = 22
	defaultVMSize       = "Standard_B2s"
)

// defaultImage is a current Ubuntu LTS image; overridable per tier.
var defaultImage = ImageReference{
	Publisher: "Canonical",
	Offer:     "0001-com-ubuntu-server-jammy",
	SKU:       "22_04-lts-gen2",
	Version:   "latest",
}

// Credentials selects the ARM service principal. Empty fields fall back to
// the matching AZURE_* environment variables; with no client id at all the
// provider uses the default credential chain (CLI login, managed identity).
type Credentials struct {
	SubscriptionID string `yaml:"subscriptionId"`
	TenantID       string `yaml:"tenantId"`
	ClientID       string `yaml:"clientId"`
	ClientSecret   string `yaml:"clientSecret"`
}

// NetworkConfig names the shared virtual network.
type NetworkConfig struct {
	VirtualNetwork string `yaml:"virtualNetwork"`
	AddressSpace   string `yaml:"addressSpace"`
	SubnetName     string `yaml:"subnetName"`
	SubnetPrefix   string `yaml:"subnetPrefix"`
}

// AdminConfig is the operator account created on both VMs and used for the
// post-provisioning SSH work.
type AdminConfig struct {
	User           string `yaml:"user"`
	PublicKeyPath  string `yaml:"publicKeyPath"`
	PrivateKeyPath string `yaml:"privateKeyPath"`
	SSHPort        int    `yaml:"sshPort"`
}

// Asset is one local file pushed to a VM before its setup script runs.
type Asset struct {
	Source string `yaml:"source"`
	Dest   string `yaml:"dest"`
}

// TierConfig describes one tier's VM and its setup payload.
type TierConfig struct {
	Name     string            `yaml:"name"`
	Size     string            `yaml:"size"`
	Image    ImageReference    `yaml:"image"`
	PublicIP bool              `yaml:"publicIP"`
	Script   string            `yaml:"script"` // local path; pushed and run with sudo
	Assets   []Asset           `yaml:"assets"`
	Env      map[string]string `yaml:"env"` // extra environment for the script
}

// TransferConfig tunes the chunked file pusher.
type TransferConfig struct {
	BlockSize int `yaml:"blockSize"` // bytes; 0 means the default 1 MiB
}

// Config is the whole deployment description, normally loaded from YAML.
type Config struct {
	Name          string         `yaml:"name"`
	Location      string         `yaml:"location"`
	ResourceGroup string         `yaml:"resourceGroup"`
	Credentials   Credentials    `yaml:"credentials"`
	Network       NetworkConfig  `yaml:"network"`
	Admin         AdminConfig    `yaml:"admin"`
	Transfer      TransferConfig `yaml:"transfer"`
	Frontend      TierConfig     `yaml:"frontend"`
	Backend       TierConfig     `yaml:"backend"`
}

// LoadConfig reads and validates a deployment config file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Annotate(err, "reading config")
	}
	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Annotate(err, "parsing config")
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, errors.Trace(err)
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.ResourceGroup == "" && c.Name != "" {
		c.ResourceGroup = c.Name + "-rg"
	}
	if c.Network.VirtualNetwork == "" && c.Name != "" {
		c.Network.VirtualNetwork = c.Name + "-vnet"
	}
	if c.Network.AddressSpace == "" {
		c.Network.AddressSpace = defaultAddressSpace
	}
	if c.Network.SubnetName == "" {
		c.Network.SubnetName = "apps"
	}
	if c.Network.SubnetPrefix == "" {
		c.Network.SubnetPrefix = defaultSubnetPrefix
	}
	if c.Admin.SSHPort == 0 {
		c.Admin.SSHPort = defaultSSHPort
	}
	if c.Transfer.BlockSize == 0 {
		c.Transfer.BlockSize = tierup.DefaultBlockSize
	}
	if c.Credentials.SubscriptionID == "" {
		c.Credentials.SubscriptionID = os.Getenv("AZURE_SUBSCRIPTION_ID")
	}
	if c.Credentials.TenantID == "" {
		c.Credentials.TenantID = os.Getenv("AZURE_TENANT_ID")
	}
	if c.Credentials.ClientID == "" {
		c.Credentials.ClientID = os.Getenv("AZURE_CLIENT_ID")
	}
	if c.Credentials.ClientSecret == "" {
		c.Credentials.ClientSecret = os.Getenv("AZURE_CLIENT_SECRET")
	}

	for _, tier := range []*TierConfig{&c.Frontend, &c.Backend} {
		if tier.Size == "" {
			tier.Size = defaultVMSize
		}
		if tier.Image == (ImageReference{}) {
			tier.Image = defaultImage
		}
	}
	if c.Frontend.Name == "" && c.Name != "" {
		c.Frontend.Name = c.Name + "-web"
	}
	if c.Backend.Name == "" && c.Name != "" {
		c.Backend.Name = c.Name + "-db"
	}
	// Operators reach the tiers over SSH, so both get a public address
	// unless the config says otherwise explicitly.
	if !c.Frontend.PublicIP && !c.Backend.PublicIP {
		c.Frontend.PublicIP = true
		c.Backend.PublicIP = true
	}
}

// Validate reports the first problem with the configuration.
func (c *Config) Validate() error {
	if c.Name == "" {
		return errors.NotValidf("empty deployment name")
	}
	if c.Location == "" {
		return errors.NotValidf("empty location")
	}
	if c.Credentials.SubscriptionID == "" {
		return errors.NotValidf("missing subscription id")
	}
	if c.Admin.User == "" {
		return errors.NotValidf("empty admin user")
	}
	if c.Admin.PublicKeyPath == "" || c.Admin.PrivateKeyPath == "" {
		return errors.NotValidf("missing admin SSH key paths")
	}
	if c.Transfer.BlockSize < 0 {
		return errors.NotValidf("negative transfer block size")
	}
	for _, tier := range []*TierConfig{&c.Frontend, &c.Backend} {
		if tier.Name == "" {
			return errors.NotValidf("unnamed tier")
		}
		if tier.Script == "" {
			return errors.NotValidf("tier %q without setup script", tier.Name)
		}
		if _, err := os.Stat(tier.Script); err != nil {
			return errors.Annotatef(err, "tier %q setup script", tier.Name)
		}
		for _, asset := range tier.Assets {
			if asset.Source == "" || asset.Dest == "" {
				return errors.NotValidf("tier %q asset with empty source or dest", tier.Name)
			}
		}
	}
	return nil
}
