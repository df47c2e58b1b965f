// Copyright © NGRSoftlab 2020-2025

// Package azure implements provision.Provider against Azure Resource
// Manager. It wraps only the small slice of the ARM surface the two-tier
// deployment needs: resource groups, one virtual network, and VMs with
// their NICs and public addresses.
package azure

import (
	"net/http"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/compute/armcompute/v2"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/network/armnetwork"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/resources/armresources"
	"github.com/juju/errors"
	"github.com/juju/loggo/v2"

	"github.com/ngrsoftlab/tierup/provision"
)

var logger = loggo.GetLogger("tierup.provision.azure")

// interface guard: ensure Client satisfies provision.Provider
var _ provision.Provider = (*Client)(nil)

// Client is a thin ARM client bound to one subscription.
type Client struct {
	location string

	groups    *armresources.ResourceGroupsClient
	vnets     *armnetwork.VirtualNetworksClient
	publicIPs *armnetwork.PublicIPAddressesClient
	nics      *armnetwork.InterfacesClient
	vms       *armcompute.VirtualMachinesClient
}

// NewClient builds ARM clients from creds. With a client id present it uses
// a service principal secret; otherwise the default credential chain (CLI
// login, managed identity, environment).
func NewClient(creds provision.Credentials) (*Client, error) {
	if creds.SubscriptionID == "" {
		return nil, errors.NotValidf("empty subscription id")
	}

	var cred azcore.TokenCredential
	var err error
	if creds.ClientID != "" {
		cred, err = azidentity.NewClientSecretCredential(creds.TenantID, creds.ClientID, creds.ClientSecret, nil)
	} else {
		cred, err = azidentity.NewDefaultAzureCredential(nil)
	}
	if err != nil {
		return nil, errors.Annotate(err, "building credential")
	}

	cl := &Client{}
	if cl.groups, err = armresources.NewResourceGroupsClient(creds.SubscriptionID, cred, nil); err != nil {
		return nil, errors.Trace(err)
	}
	if cl.vnets, err = armnetwork.NewVirtualNetworksClient(creds.SubscriptionID, cred, nil); err != nil {
		return nil, errors.Trace(err)
	}
	if cl.publicIPs, err = armnetwork.NewPublicIPAddressesClient(creds.SubscriptionID, cred, nil); err != nil {
		return nil, errors.Trace(err)
	}
	if cl.nics, err = armnetwork.NewInterfacesClient(creds.SubscriptionID, cred, nil); err != nil {
		return nil, errors.Trace(err)
	}
	if cl.vms, err = armcompute.NewVirtualMachinesClient(creds.SubscriptionID, cred, nil); err != nil {
		return nil, errors.Trace(err)
	}
	return cl, nil
}

// isNotFound reports whether err is an ARM 404.
func isNotFound(err error) bool {
	var respErr *azcore.ResponseError
	return errors.As(err, &respErr) && respErr.StatusCode == http.StatusNotFound
}

// toValue dereferences p, returning the zero value for nil.
func toValue[T any](p *T) T {
	if p == nil {
		var zero T
		return zero
	}
	return *p
}

// tagsToPtr converts plain tags into the pointer map ARM payloads use.
func tagsToPtr(tags map[string]string) map[string]*string {
	if len(tags) == 0 {
		return nil
	}
	out := make(map[string]*string, len(tags))
	for k, v := range tags {
		v := v
		out[k] = &v
	}
	return out
}
