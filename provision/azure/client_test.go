// Copyright © NGRSoftlab 2020-2025

package azure

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/network/armnetwork"

	"github.com/ngrsoftlab/tierup/provision"
)

func TestNewClientEmptySubscription(t *testing.T) {
	if _, err := NewClient(provision.Credentials{}); err == nil {
		t.Error("expected error for empty subscription id")
	}
}

func TestIsNotFound(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"plain", errors.New("boom"), false},
		{"arm_404", &azcore.ResponseError{StatusCode: http.StatusNotFound}, true},
		{"arm_403", &azcore.ResponseError{StatusCode: http.StatusForbidden}, false},
		{"wrapped_404", fmt.Errorf("get vnet: %w", &azcore.ResponseError{StatusCode: http.StatusNotFound}), true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := isNotFound(tc.err); got != tc.want {
				t.Errorf("isNotFound=%v; want %v", got, tc.want)
			}
		})
	}
}

func TestTagsToPtr(t *testing.T) {
	if tagsToPtr(nil) != nil {
		t.Error("nil tags should map to nil")
	}
	got := tagsToPtr(map[string]string{"deployment": "shop"})
	if v := got["deployment"]; v == nil || *v != "shop" {
		t.Errorf("got=%v", got)
	}
}

func TestToValue(t *testing.T) {
	if toValue((*string)(nil)) != "" {
		t.Error("nil *string should yield empty string")
	}
	if toValue(to.Ptr(42)) != 42 {
		t.Error("pointer value lost")
	}
}

func TestSubnetIDFrom(t *testing.T) {
	vnet := func(subnets ...*armnetwork.Subnet) *armnetwork.VirtualNetwork {
		return &armnetwork.VirtualNetwork{
			Name:       to.Ptr("shop-vnet"),
			Properties: &armnetwork.VirtualNetworkPropertiesFormat{Subnets: subnets},
		}
	}

	tests := []struct {
		name    string
		vnet    *armnetwork.VirtualNetwork
		subnet  string
		want    string
		wantErr bool
	}{
		{
			name:    "no_properties",
			vnet:    &armnetwork.VirtualNetwork{Name: to.Ptr("shop-vnet")},
			subnet:  "apps",
			wantErr: true,
		},
		{
			name:    "missing_subnet",
			vnet:    vnet(&armnetwork.Subnet{Name: to.Ptr("other"), ID: to.Ptr("id-1")}),
			subnet:  "apps",
			wantErr: true,
		},
		{
			name:    "empty_id",
			vnet:    vnet(&armnetwork.Subnet{Name: to.Ptr("apps")}),
			subnet:  "apps",
			wantErr: true,
		},
		{
			name: "found",
			vnet: vnet(
				nil,
				&armnetwork.Subnet{Name: to.Ptr("other"), ID: to.Ptr("id-1")},
				&armnetwork.Subnet{Name: to.Ptr("apps"), ID: to.Ptr("id-2")},
			),
			subnet: "apps",
			want:   "id-2",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := subnetIDFrom(tc.vnet, tc.subnet)
			if (err != nil) != tc.wantErr {
				t.Fatalf("err=%v; wantErr=%v", err, tc.wantErr)
			}
			if got != tc.want {
				t.Errorf("got=%q; want %q", got, tc.want)
			}
		})
	}
}

func TestPublicIPFrom(t *testing.T) {
	tests := []struct {
		name string
		ip   *armnetwork.PublicIPAddress
		want string
	}{
		{"nil_resource", nil, ""},
		{"no_properties", &armnetwork.PublicIPAddress{}, ""},
		{
			name: "no_address",
			ip:   &armnetwork.PublicIPAddress{Properties: &armnetwork.PublicIPAddressPropertiesFormat{}},
			want: "",
		},
		{
			name: "allocated",
			ip: &armnetwork.PublicIPAddress{Properties: &armnetwork.PublicIPAddressPropertiesFormat{
				IPAddress: to.Ptr("203.0.113.7"),
			}},
			want: "203.0.113.7",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := publicIPFrom(tc.ip); got != tc.want {
				t.Errorf("got=%q; want %q", got, tc.want)
			}
		})
	}
}

func TestPrivateIPFrom(t *testing.T) {
	tests := []struct {
		name string
		nic  *armnetwork.Interface
		want string
	}{
		{"no_properties", &armnetwork.Interface{}, ""},
		{
			name: "no_address",
			nic: &armnetwork.Interface{Properties: &armnetwork.InterfacePropertiesFormat{
				IPConfigurations: []*armnetwork.InterfaceIPConfiguration{
					nil,
					{Properties: &armnetwork.InterfaceIPConfigurationPropertiesFormat{}},
				},
			}},
			want: "",
		},
		{
			name: "first_address",
			nic: &armnetwork.Interface{Properties: &armnetwork.InterfacePropertiesFormat{
				IPConfigurations: []*armnetwork.InterfaceIPConfiguration{
					{Properties: &armnetwork.InterfaceIPConfigurationPropertiesFormat{
						PrivateIPAddress: to.Ptr("10.20.1.4"),
					}},
				},
			}},
			want: "10.20.1.4",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := privateIPFrom(tc.nic); got != tc.want {
				t.Errorf("got=%q; want %q", got, tc.want)
			}
		})
	}
}
