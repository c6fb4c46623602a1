package constants

// BootIgnore returns the top-level entries of the mounted image that are
// already accounted for by the variant copies and must not be swept into
// the BaseOS boot files.
func BootIgnore() []string {
	return []string{VariantAppStream, VariantBaseOS, ".treeinfo", ".discinfo", "media.repo"}
}

// Variants returns the RHEL-8 variants in the order they are processed.
func Variants() []string {
	return []string{VariantAppStream, VariantBaseOS}
}

const (
	VariantAppStream = "AppStream"
	VariantBaseOS    = "BaseOS"

	// ExtraFilesName is the manifest at the image root listing auxiliary
	// files (license texts, GPG keys) replicated into both variants.
	ExtraFilesName = "extra_files.json"

	// TransTbl is the legacy ISO index file excluded from every tree copy.
	TransTbl = "TRANS.TBL"

	// KickstartDir is the subdirectory each variant tree lands in.
	KickstartDir = "kickstart"

	// MountPattern names the temporary mountpoint for the source image.
	MountPattern = "*.rhel-8-iso"
)
