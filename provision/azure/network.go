// Copyright © NGRSoftlab 2020-2025

package azure

import (
	"context"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/network/armnetwork"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/resources/armresources"
	"github.com/juju/errors"

	"github.com/ngrsoftlab/tierup/provision"
)

// EnsureResourceGroup creates the resource group if it does not already
// exist. An existing group is left untouched, tags included.
func (cl *Client) EnsureResourceGroup(ctx context.Context, name, location string, tags map[string]string) error {
	existing, err := cl.groups.CheckExistence(ctx, name, nil)
	if err != nil {
		return errors.Annotatef(err, "checking resource group %q", name)
	}
	if existing.Success {
		logger.Debugf("resource group %q already exists", name)
		return nil
	}

	logger.Infof("creating resource group %q in %s", name, location)
	_, err = cl.groups.CreateOrUpdate(ctx, name, armresources.ResourceGroup{
		Location: to.Ptr(location),
		Tags:     tagsToPtr(tags),
	}, nil)
	return errors.Annotatef(err, "creating resource group %q", name)
}

// EnsureVirtualNetwork returns the subnet ID of the named virtual network,
// creating the network with a single subnet when it is absent.
func (cl *Client) EnsureVirtualNetwork(ctx context.Context, params provision.NetworkParams) (string, error) {
	got, err := cl.vnets.Get(ctx, params.ResourceGroup, params.Name, nil)
	if err == nil {
		logger.Debugf("virtual network %q already exists", params.Name)
		return subnetIDFrom(&got.VirtualNetwork, params.SubnetName)
	}
	if !isNotFound(err) {
		return "", errors.Annotatef(err, "checking virtual network %q", params.Name)
	}

	logger.Infof("creating virtual network %q (%s, subnet %s %s)",
		params.Name, params.AddressSpace, params.SubnetName, params.SubnetPrefix)
	poller, err := cl.vnets.BeginCreateOrUpdate(ctx, params.ResourceGroup, params.Name, armnetwork.VirtualNetwork{
		Location: to.Ptr(params.Location),
		Tags:     tagsToPtr(params.Tags),
		Properties: &armnetwork.VirtualNetworkPropertiesFormat{
			AddressSpace: &armnetwork.AddressSpace{
				AddressPrefixes: []*string{to.Ptr(params.AddressSpace)},
			},
			Subnets: []*armnetwork.Subnet{{
				Name: to.Ptr(params.SubnetName),
				Properties: &armnetwork.SubnetPropertiesFormat{
					AddressPrefix: to.Ptr(params.SubnetPrefix),
				},
			}},
		},
	}, nil)
	var result armnetwork.VirtualNetworksClientCreateOrUpdateResponse
	if err == nil {
		result, err = poller.PollUntilDone(ctx, nil)
	}
	if err != nil {
		return "", errors.Annotatef(err, "creating virtual network %q", params.Name)
	}
	return subnetIDFrom(&result.VirtualNetwork, params.SubnetName)
}

// subnetIDFrom finds the named subnet's ID inside a virtual network payload.
func subnetIDFrom(vnet *armnetwork.VirtualNetwork, subnetName string) (string, error) {
	if vnet.Properties == nil {
		return "", errors.NotFoundf("subnets on virtual network %q", toValue(vnet.Name))
	}
	for _, sub := range vnet.Properties.Subnets {
		if sub == nil {
			continue
		}
		if toValue(sub.Name) == subnetName {
			id := toValue(sub.ID)
			if id == "" {
				return "", errors.NotValidf("subnet %q with empty id", subnetName)
			}
			return id, nil
		}
	}
	return "", errors.NotFoundf("subnet %q in virtual network %q", subnetName, toValue(vnet.Name))
}
