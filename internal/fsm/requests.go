package fsm

import (
	"github.com/otcheredev/pcd-manager/internal/bytelib"
	"github.com/otcheredev/pcd-manager/internal/codec"
	"github.com/otcheredev/pcd-manager/internal/dim"
)

// RequestGetMDS implements request_get_mds: a Get with an empty
// attribute-id list against the MDS handle, meaning "all attributes".
func (c *Context) RequestGetMDS(cb func(codec.GetResultSimple, error)) error {
	return c.RequestGet(codec.MDSHandle, nil, cb)
}

// RequestSegmentInfo implements request_segment_info: a confirmed
// action asking a PMStore for its segment directory.
func (c *Context) RequestSegmentInfo(pmStoreHandle uint16, sel codec.SegmSelection, cb func(codec.ActionResultSimple, error)) error {
	w := bytelib.NewWriter(0)
	codec.EncodeSegmSelection(w, sel)
	return c.RequestAction(pmStoreHandle, codec.ActionGetSegmentInfo, w.Buffer(), cb)
}

// RequestSegmentData implements request_segment_data: triggers transfer
// of one PMStore segment's data.
func (c *Context) RequestSegmentData(pmStoreHandle uint16, segInstNo uint16, cb func(codec.ActionResultSimple, error)) error {
	w := bytelib.NewWriter(0)
	codec.EncodeTrigSegmDataXferReq(w, codec.TrigSegmDataXferReq{SegInstNo: segInstNo})
	return c.RequestAction(pmStoreHandle, codec.ActionTrigSegmentDataXfer, w.Buffer(), cb)
}

// RequestClearSegments implements request_clear_segments.
func (c *Context) RequestClearSegments(pmStoreHandle uint16, sel codec.SegmSelection, cb func(codec.ActionResultSimple, error)) error {
	w := bytelib.NewWriter(0)
	codec.EncodeSegmSelection(w, sel)
	return c.RequestAction(pmStoreHandle, codec.ActionClearSegments, w.Buffer(), cb)
}

// RequestDataRequest implements request_data_request: validates the
// requested type/mode/scope/person-id bits against the MDS's reported
// capability per §4.3, then starts the scan via a confirmed action on
// the targeted scanner.
func (c *Context) RequestDataRequest(scannerHandle uint16, requested uint16, cb func(codec.ActionResultSimple, error)) error {
	if err := c.mds.CheckDataRequest(requested); err != nil {
		return err
	}
	w := bytelib.NewWriter(2)
	w.WriteU16(requested)
	return c.RequestAction(scannerHandle, codec.ActionDataRequestStart, w.Buffer(), cb)
}

// RequestStopDataRequest stops a previously started scan.
func (c *Context) RequestStopDataRequest(scannerHandle uint16, cb func(codec.ActionResultSimple, error)) error {
	return c.RequestAction(scannerHandle, codec.ActionDataRequestStop, nil, cb)
}

// RequestSetTime implements request_set_time: sets the MDS's absolute
// time. Encoded as a big-endian Unix-seconds uint32, matching the width
// the rest of the mirror's time fields use (RelativeTime, HiResRelativeTime)
// — the original's BCD Abs-Time-Stamp layout was not present in
// original_source's filtered copy, so this is a deliberate simplification
// of the wire representation, not a transcription of it.
func (c *Context) RequestSetTime(unixSeconds uint32, cb func(codec.SetResultSimple, error)) error {
	w := bytelib.NewWriter(4)
	w.WriteU32(unixSeconds)
	attrs := []codec.AVA{{AttributeID: codec.AttrTimeAbs, Value: w.Buffer()}}
	return c.RequestSet(codec.MDSHandle, attrs, cb)
}

// SetScannerOperationalState implements set_scanner_operational_state:
// a Set of attr-scan-handle's enable-status attribute.
func (c *Context) SetScannerOperationalState(scannerHandle uint16, state dim.ScannerOperationalState, cb func(codec.SetResultSimple, error)) error {
	w := bytelib.NewWriter(2)
	w.WriteU16(uint16(state))
	attrs := []codec.AVA{{AttributeID: codec.AttrScannerEnableStatus, Value: w.Buffer()}}
	return c.RequestSet(scannerHandle, attrs, cb)
}
