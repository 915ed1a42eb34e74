package ledger

// On-ledger entry points of the vault package. Every mutating capability has
// two variants: the base, credential-free entry point used when the invoking
// wallet pays gas, and a "_with_credential" variant used when a developer-held
// signer sponsors the transaction. CredentialedSuffix is appended by the
// authorization path, never by individual call sites.
const (
	VaultModule        = "asset_vault"
	SharingModule      = "asset_sharing"
	BucketModule       = "asset_bucket"
	PolicyModule       = "access_policy"
	CredentialModule   = "api_credential"
	CredentialedSuffix = "_with_credential"
)

// asset_vault functions.
const (
	FnRegisterAsset    = "register_asset"
	FnDeleteAsset      = "delete_asset"
	FnRenameAsset      = "rename_asset"
	FnCopyAsset        = "copy_asset"
	FnUpdateAsset      = "update_asset_metadata"
	FnCreateFolder     = "create_folder"
	FnDeleteFolder     = "delete_folder"
	FnMoveAssetFolder  = "move_asset_to_folder"
	FnApplyPolicy      = "apply_policy_to_asset"
)

// access_policy functions.
const (
	FnCreatePolicy = "create_policy"
	FnApproveSeal  = "seal_approve"
)

// asset_sharing functions.
const (
	FnShareAsset      = "share_asset"
	FnCreateLink      = "create_shareable_link"
	FnRevokeShare     = "revoke_share"
	FnDeactivateLink  = "deactivate_link"
	FnTrackLinkAccess = "track_link_access"
)

// asset_bucket functions.
const (
	FnCreateBucket          = "create_bucket"
	FnAddCollaborator       = "add_collaborator"
	FnRemoveCollaborator    = "remove_collaborator"
	FnAddAssetToBucket      = "add_asset_to_bucket"
	FnRemoveAssetFromBucket = "remove_asset_from_bucket"
)

// Event types emitted by the vault package.
const (
	EventCredentialCreated = "api_credential::CredentialCreated"
	EventAssetRegistered   = "asset_vault::AssetRegistered"
)

// Object type fragments used to filter owned-object listings and
// object-change lists.
const (
	TypeAsset         = "asset_vault::Asset"
	TypeFolder        = "asset_vault::Folder"
	TypePolicy        = "access_policy::Policy"
	TypeShareGrant    = "asset_sharing::ShareGrant"
	TypeShareableLink = "asset_sharing::ShareableLink"
	TypeBucket        = "asset_bucket::Bucket"
	TypeCredential    = "api_credential::Credential"
)
