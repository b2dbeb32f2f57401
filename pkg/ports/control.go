package ports

import "fmt"

// ControlID names an encoder capability that can be set after initialization.
type ControlID int

const (
	ControlCPUUsed ControlID = iota
	ControlEnableCDEF
	ControlEnableTPLModel
	ControlDeltaQMode
	ControlEnableOrderHint
	ControlAQMode
	ControlMaxIntraBitratePct
	ControlCoeffCostUpdFreq
	ControlModeCostUpdFreq
	ControlMVCostUpdFreq
	ControlTuneContent
	ControlEnablePalette
	ControlTileRows
	ControlTileColumns
	ControlRowMT
	ControlEnableOBMC
	ControlNoiseSensitivity
	ControlEnableWarpedMotion
	ControlEnableGlobalMotion
	ControlEnableRefFrameMVs
	ControlSuperblockSize
	ControlEnableCFLIntra
	ControlEnableSmoothIntra
	ControlEnableAngleDelta
	ControlEnableFilterIntra
	ControlIntraDefaultTXOnly
	ControlDisableTrellisQuant
	ControlEnableDistWtdComp
	ControlEnableDiffWtdComp
	ControlEnableDualFilter
	ControlEnableInterIntraComp
	ControlEnableInterIntraWedge
	ControlEnableIntraEdgeFilter
	ControlEnableIntraBC
	ControlEnableMaskedComp
	ControlEnablePaethIntra
	ControlEnableQM
	ControlEnableRectPartitions
	ControlEnableRestoration
	ControlEnableSmoothInterIntra
	ControlEnableTX64
	ControlMaxReferenceFrames
)

var controlNames = map[ControlID]string{
	ControlCPUUsed:                "cpu_used",
	ControlEnableCDEF:             "enable_cdef",
	ControlEnableTPLModel:         "enable_tpl_model",
	ControlDeltaQMode:             "deltaq_mode",
	ControlEnableOrderHint:        "enable_order_hint",
	ControlAQMode:                 "aq_mode",
	ControlMaxIntraBitratePct:     "max_intra_bitrate_pct",
	ControlCoeffCostUpdFreq:       "coeff_cost_upd_freq",
	ControlModeCostUpdFreq:        "mode_cost_upd_freq",
	ControlMVCostUpdFreq:          "mv_cost_upd_freq",
	ControlTuneContent:            "tune_content",
	ControlEnablePalette:          "enable_palette",
	ControlTileRows:               "tile_rows",
	ControlTileColumns:            "tile_columns",
	ControlRowMT:                  "row_mt",
	ControlEnableOBMC:             "enable_obmc",
	ControlNoiseSensitivity:       "noise_sensitivity",
	ControlEnableWarpedMotion:     "enable_warped_motion",
	ControlEnableGlobalMotion:     "enable_global_motion",
	ControlEnableRefFrameMVs:      "enable_ref_frame_mvs",
	ControlSuperblockSize:         "superblock_size",
	ControlEnableCFLIntra:         "enable_cfl_intra",
	ControlEnableSmoothIntra:      "enable_smooth_intra",
	ControlEnableAngleDelta:       "enable_angle_delta",
	ControlEnableFilterIntra:      "enable_filter_intra",
	ControlIntraDefaultTXOnly:     "intra_default_tx_only",
	ControlDisableTrellisQuant:    "disable_trellis_quant",
	ControlEnableDistWtdComp:      "enable_dist_wtd_comp",
	ControlEnableDiffWtdComp:      "enable_diff_wtd_comp",
	ControlEnableDualFilter:       "enable_dual_filter",
	ControlEnableInterIntraComp:   "enable_interintra_comp",
	ControlEnableInterIntraWedge:  "enable_interintra_wedge",
	ControlEnableIntraEdgeFilter:  "enable_intra_edge_filter",
	ControlEnableIntraBC:          "enable_intrabc",
	ControlEnableMaskedComp:       "enable_masked_comp",
	ControlEnablePaethIntra:       "enable_paeth_intra",
	ControlEnableQM:               "enable_qm",
	ControlEnableRectPartitions:   "enable_rect_partitions",
	ControlEnableRestoration:      "enable_restoration",
	ControlEnableSmoothInterIntra: "enable_smooth_interintra",
	ControlEnableTX64:             "enable_tx64",
	ControlMaxReferenceFrames:     "max_reference_frames",
}

// String returns the string representation of the control.
func (c ControlID) String() string {
	if name, ok := controlNames[c]; ok {
		return name
	}
	return fmt.Sprintf("control(%d)", int(c))
}

// MarshalText implements encoding.TextMarshaler.
func (c ControlID) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// Control is one capability assignment.
type Control struct {
	ID    ControlID `yaml:"id"`
	Value int       `yaml:"value"`
}

// Values for ControlTuneContent.
const (
	ContentDefault = 0
	ContentScreen  = 1
)

// Values for ControlSuperblockSize.
const (
	Superblock64x64   = 0
	Superblock128x128 = 1
	SuperblockDynamic = 2
)
