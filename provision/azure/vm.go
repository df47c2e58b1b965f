// Copyright © NGRSoftlab 2020-2025

package azure

import (
	"context"
	"fmt"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/compute/armcompute/v2"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/network/armnetwork"
	"github.com/juju/errors"

	"github.com/ngrsoftlab/tierup/provision"
)

// CreateVirtualMachine provisions the machine's public address (when
// requested), its NIC on the given subnet, and the VM itself, polling each
// long-running operation to completion. Existing resources with the same
// names are updated in place, which makes reruns of a failed deployment
// converge instead of erroring.
func (cl *Client) CreateVirtualMachine(ctx context.Context, resourceGroup string, spec provision.MachineSpec) (*provision.Machine, error) {
	var publicIP *armnetwork.PublicIPAddress
	if spec.PublicIP {
		ip, err := cl.createPublicIP(ctx, resourceGroup, spec)
		if err != nil {
			return nil, errors.Annotatef(err, "public address for %q", spec.Name)
		}
		publicIP = ip
	}

	nic, err := cl.createNIC(ctx, resourceGroup, spec, publicIP)
	if err != nil {
		return nil, errors.Annotatef(err, "network interface for %q", spec.Name)
	}

	logger.Infof("creating virtual machine %q (%s)", spec.Name, spec.Size)
	poller, err := cl.vms.BeginCreateOrUpdate(ctx, resourceGroup, spec.Name, armcompute.VirtualMachine{
		Location: to.Ptr(spec.Location),
		Tags:     tagsToPtr(spec.Tags),
		Properties: &armcompute.VirtualMachineProperties{
			HardwareProfile: &armcompute.HardwareProfile{
				VMSize: to.Ptr(armcompute.VirtualMachineSizeTypes(spec.Size)),
			},
			StorageProfile: &armcompute.StorageProfile{
				ImageReference: &armcompute.ImageReference{
					Publisher: to.Ptr(spec.Image.Publisher),
					Offer:     to.Ptr(spec.Image.Offer),
					SKU:       to.Ptr(spec.Image.SKU),
					Version:   to.Ptr(spec.Image.Version),
				},
				OSDisk: cl.osDisk(spec),
			},
			OSProfile: &armcompute.OSProfile{
				ComputerName:  to.Ptr(spec.Name),
				AdminUsername: to.Ptr(spec.AdminUser),
				LinuxConfiguration: &armcompute.LinuxConfiguration{
					DisablePasswordAuthentication: to.Ptr(true),
					SSH: &armcompute.SSHConfiguration{
						PublicKeys: []*armcompute.SSHPublicKey{{
							Path:    to.Ptr(fmt.Sprintf("/home/%s/.ssh/authorized_keys", spec.AdminUser)),
							KeyData: to.Ptr(spec.SSHPublicKey),
						}},
					},
				},
			},
			NetworkProfile: &armcompute.NetworkProfile{
				NetworkInterfaces: []*armcompute.NetworkInterfaceReference{{
					ID: nic.ID,
				}},
			},
		},
	}, nil)
	if err == nil {
		_, err = poller.PollUntilDone(ctx, nil)
	}
	if err != nil {
		return nil, errors.Annotatef(err, "creating virtual machine %q", spec.Name)
	}

	machine := &provision.Machine{
		Name:      spec.Name,
		PrivateIP: privateIPFrom(nic),
	}
	// Static allocation: the address is known as soon as the resource
	// exists.
	machine.PublicIP = publicIPFrom(publicIP)
	return machine, nil
}

func (cl *Client) osDisk(spec provision.MachineSpec) *armcompute.OSDisk {
	disk := &armcompute.OSDisk{
		Name:         to.Ptr(spec.Name + "-osdisk"),
		CreateOption: to.Ptr(armcompute.DiskCreateOptionTypesFromImage),
		ManagedDisk: &armcompute.ManagedDiskParameters{
			StorageAccountType: to.Ptr(armcompute.StorageAccountTypesStandardLRS),
		},
	}
	if spec.OSDiskSizeGB > 0 {
		disk.DiskSizeGB = to.Ptr(spec.OSDiskSizeGB)
	}
	return disk
}

func (cl *Client) createPublicIP(ctx context.Context, resourceGroup string, spec provision.MachineSpec) (*armnetwork.PublicIPAddress, error) {
	name := spec.Name + "-pip"
	logger.Debugf("creating public address %q", name)
	poller, err := cl.publicIPs.BeginCreateOrUpdate(ctx, resourceGroup, name, armnetwork.PublicIPAddress{
		Location: to.Ptr(spec.Location),
		Tags:     tagsToPtr(spec.Tags),
		SKU: &armnetwork.PublicIPAddressSKU{
			Name: to.Ptr(armnetwork.PublicIPAddressSKUNameStandard),
		},
		Properties: &armnetwork.PublicIPAddressPropertiesFormat{
			PublicIPAllocationMethod: to.Ptr(armnetwork.IPAllocationMethodStatic),
		},
	}, nil)
	var result armnetwork.PublicIPAddressesClientCreateOrUpdateResponse
	if err == nil {
		result, err = poller.PollUntilDone(ctx, nil)
	}
	if err != nil {
		return nil, errors.Annotatef(err, "creating public address %q", name)
	}
	return &result.PublicIPAddress, nil
}

func (cl *Client) createNIC(
	ctx context.Context,
	resourceGroup string,
	spec provision.MachineSpec,
	publicIP *armnetwork.PublicIPAddress,
) (*armnetwork.Interface, error) {
	name := spec.Name + "-nic"
	logger.Debugf("creating network interface %q", name)

	ipConfig := &armnetwork.InterfaceIPConfiguration{
		Name: to.Ptr("primary"),
		Properties: &armnetwork.InterfaceIPConfigurationPropertiesFormat{
			Subnet:                    &armnetwork.Subnet{ID: to.Ptr(spec.SubnetID)},
			PrivateIPAllocationMethod: to.Ptr(armnetwork.IPAllocationMethodDynamic),
		},
	}
	if publicIP != nil {
		ipConfig.Properties.PublicIPAddress = publicIP
	}

	poller, err := cl.nics.BeginCreateOrUpdate(ctx, resourceGroup, name, armnetwork.Interface{
		Location: to.Ptr(spec.Location),
		Tags:     tagsToPtr(spec.Tags),
		Properties: &armnetwork.InterfacePropertiesFormat{
			IPConfigurations: []*armnetwork.InterfaceIPConfiguration{ipConfig},
		},
	}, nil)
	var result armnetwork.InterfacesClientCreateOrUpdateResponse
	if err == nil {
		result, err = poller.PollUntilDone(ctx, nil)
	}
	if err != nil {
		return nil, errors.Annotatef(err, "creating network interface %q", name)
	}
	return &result.Interface, nil
}

// publicIPFrom reads the allocated address off a public IP resource.
func publicIPFrom(ip *armnetwork.PublicIPAddress) string {
	if ip == nil || ip.Properties == nil {
		return ""
	}
	return toValue(ip.Properties.IPAddress)
}

// privateIPFrom pulls the first configured private address off a NIC.
func privateIPFrom(nic *armnetwork.Interface) string {
	if nic.Properties == nil {
		return ""
	}
	for _, cfg := range nic.Properties.IPConfigurations {
		if cfg == nil || cfg.Properties == nil {
			continue
		}
		if ip := toValue(cfg.Properties.PrivateIPAddress); ip != "" {
			return ip
		}
	}
	return ""
}
