package registry

// DefaultTable lists the Matter factory-data parameters understood by the
// firmware's factory-data provider. IDs are grouped by the firmware provider
// that consumes them.
var DefaultTable = []Descriptor{
	// DeviceAttestationCredentialsProvider
	{Name: "CERTIFICATION_DECLARATION", ID: 1, Kind: KindByteArray, PEM: PEMCertificate},
	{Name: "FIRMWARE_INFORMATION", ID: 2, Kind: KindByteArray, PEM: PEMCertificate},
	{Name: "DEVICE_ATTESTATION_CERTIFICATE", ID: 3, Kind: KindByteArray, PEM: PEMCertificate},
	{Name: "PAI_CERTIFICATE", ID: 4, Kind: KindByteArray, PEM: PEMCertificate},
	{Name: "DEVICE_ATTESTATION_PRIV_KEY", ID: 5, Kind: KindByteArray, PEM: PEMPrivateKey},
	{Name: "DEVICE_ATTESTATION_PUB_KEY", ID: 6, Kind: KindByteArray, PEM: PEMPublicKey},

	// CommissionableDataProvider
	{Name: "SETUP_DISCRIMINATOR", ID: 11, Kind: KindInt16},
	{Name: "SPAKE2_ITERATION_COUNT", ID: 12, Kind: KindInt32},
	{Name: "SPAKE2_SALT", ID: 13, Kind: KindByteArray, PEM: PEMCertificate},
	{Name: "SPAKE2_VERIFIER", ID: 14, Kind: KindByteArray, PEM: PEMCertificate},
	{Name: "SPAKE2_SETUP_PASSCODE", ID: 15, Kind: KindInt32},

	// DeviceInstanceInfoProvider
	{Name: "VENDOR_NAME", ID: 21, Kind: KindString},
	{Name: "VENDOR_ID", ID: 22, Kind: KindInt16},
	{Name: "PRODUCT_NAME", ID: 23, Kind: KindString},
	{Name: "PRODUCT_ID", ID: 24, Kind: KindInt16},
	{Name: "SERIAL_NUMBER", ID: 25, Kind: KindString},
	{Name: "MANUFACTURING_DATE", ID: 26, Kind: KindString},
	{Name: "HARDWARE_VERSION", ID: 27, Kind: KindInt16},
	{Name: "HARDWARE_VERSION_STRING", ID: 28, Kind: KindString},
	{Name: "ROTATING_DEVICE_ID", ID: 29, Kind: KindString},

	// Platform specific
	{Name: "TAG_ID_ENABLE_KEY", ID: 41, Kind: KindString},
}

var defaultRegistry = MustNew(DefaultTable)

// Default returns the registry built from DefaultTable.
func Default() *Registry {
	return defaultRegistry
}
