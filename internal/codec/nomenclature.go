package codec

// APDU choice discriminators, per §6 of the wire protocol section. Values
// must match IEEE 11073-20601; these are the ones the original carries.
const (
	ChoiceAARQ uint16 = 0xE200
	ChoiceAARE uint16 = 0xE300
	ChoiceRLRQ uint16 = 0xE400
	ChoiceRLRE uint16 = 0xE500
	ChoiceABRT uint16 = 0xE600
	ChoicePRST uint16 = 0xE700
)

// DATA-apdu.message choice discriminators (the inner choice inside PRST).
const (
	ChoiceROIVConfirmedEventReport uint16 = 0x0001
	ChoiceROIVConfirmedAction      uint16 = 0x0002
	ChoiceROIVConfirmedSet         uint16 = 0x0003
	ChoiceROIVConfirmedGet         uint16 = 0x0004
	ChoiceRORSConfirmedEventReport uint16 = 0x0005
	ChoiceRORSConfirmedAction      uint16 = 0x0006
	ChoiceRORSConfirmedSet         uint16 = 0x0007
	ChoiceRORSConfirmedGet         uint16 = 0x0008
	ChoiceROER                     uint16 = 0x0009
	ChoiceRORJ                     uint16 = 0x000A
)

// Recognised MDS attribute ids, exhaustive per §4.3.
const (
	AttrHandle             uint16 = 0x0913
	AttrSysType            uint16 = 0x0914
	AttrIDModel            uint16 = 0x0C0C
	AttrSysID              uint16 = 0x0C10
	AttrDevConfigID        uint16 = 0x0D1C
	AttrAttributeValMap    uint16 = 0x0A01
	AttrIDProdSpecn        uint16 = 0x0C15
	AttrMDSTimeInfo        uint16 = 0x0D23
	AttrTimeAbs            uint16 = 0x0927
	AttrTimeRel            uint16 = 0x0928
	AttrTimeRelHiRes       uint16 = 0x0929
	AttrTimeAbsAdjust      uint16 = 0x0A4E
	AttrPowerStat          uint16 = 0x0A4F
	AttrValBattCharge      uint16 = 0x0A50
	AttrTimeBattRemain     uint16 = 0x0A51
	AttrRegCertDataList    uint16 = 0x0A52
	AttrSysTypeSpecList    uint16 = 0x0A53
	AttrConfirmTimeout     uint16 = 0x0A54
)

// MDS object class and common object-class nomenclature codes used to
// discriminate a ConfigObject's obj_class field.
const (
	ObjClassMDS             uint16 = 0x0010
	ObjClassNumeric         uint16 = 0x0011
	ObjClassEnumeration     uint16 = 0x0012
	ObjClassRTSA            uint16 = 0x0013
	ObjClassPMStore         uint16 = 0x0014
	ObjClassEpiCfgScanner   uint16 = 0x0015
	ObjClassPeriCfgScanner  uint16 = 0x0016
)

// MDSHandle is the reserved handle of the MDS object itself within its
// own mirror; every sub-object handle must differ from it.
const MDSHandle uint16 = 0x0000

// Sub-object attribute ids, per the object classes named in §3 (Metric,
// Numeric, Enumeration, PMStore, Scanner/EpiCfgScanner/PeriCfgScanner).
// The original's dimutil_fill_*_attr helpers were not carried into
// original_source's filtered copy, so these follow the same nomenclature
// numbering family as the MDS attribute set above rather than a
// transcription of missing source.
const (
	AttrMetricStatus    uint16 = 0x0A4A
	AttrUnitCode        uint16 = 0x09F6
	AttrNuVal           uint16 = 0x0A5A
	AttrNuCmpdVal       uint16 = 0x0A5B
	AttrEnumObsValSimple uint16 = 0x0A5C
	AttrScanReportPer   uint16 = 0x0A5D
	AttrSaSpecn         uint16 = 0x0A5E

	AttrScannerEnableStatus uint16 = 0x0A60
	AttrConfirmMode         uint16 = 0x0A61
	AttrAttrValMapOverall   uint16 = 0x0A62

	AttrPMStoreCapab       uint16 = 0x0A70
	AttrPMStoreSampleAlgo  uint16 = 0x0A71
	AttrNumOfPMSegments    uint16 = 0x0A72
)

// MDCNotiConfig is the event_type carried by an unsolicited
// ROIV-confirmed-event-report that announces the Agent's configuration.
const MDCNotiConfig uint16 = 0x0D1C

// Scan-report event_type discriminators, carried by an unsolicited
// ROIV-confirmed-event-report during Operating, per §4.5.
const (
	MDCNotiScanReportVar         uint16 = 0x0D22
	MDCNotiScanReportFixed       uint16 = 0x0D25
	MDCNotiScanReportVarPersonID   uint16 = 0x0D26
	MDCNotiScanReportFixedPersonID uint16 = 0x0D27
)

// ConfigResult values, the three-way verdict of §4.5/original
// configuring.c.
type ConfigResult uint16

const (
	ConfigAccepted             ConfigResult = 0
	ConfigStandardUnknown      ConfigResult = 1
	ConfigUnsupported          ConfigResult = 2
)

// Remote-operation error values (ROER) used by the FSM tie-breaks in §4.5.
const (
	ErrNoSuchObjectInstance uint16 = 1
	ErrNoSuchAction         uint16 = 2
)

// ReleaseResponseReason values for RLRE.
const (
	ReleaseReasonNormal uint16 = 0
)
