package ocs

const (
	BasePath = "ocs/v1.php/"

	ServiceShare       = "apps/files_sharing/api/v1"
	ServicePrivateData = "privatedata"
	ServiceCloud       = "cloud"
)

const (
	HeaderOCSAPIRequest = "OCS-APIREQUEST"
)

const (
	StatusOK                  = 100
	StatusProvisioningDisable = 999
)

// permission bits, lib/public/constants.php
const (
	PermissionRead   = 1
	PermissionUpdate = 2
	PermissionCreate = 4
	PermissionDelete = 8
	PermissionShare  = 16
	PermissionAll    = 31
)

// share types, lib/public/share.php
const (
	ShareTypeUser   = 0
	ShareTypeGroup  = 1
	ShareTypeLink   = 3
	ShareTypeRemote = 6
)
