package trading

import (
	"bytes"
	"errors"
	"strconv"
)

// ReportType is the execution report sub-type carried in tag 150 (ExecType).
type ReportType uint8

const (
	ReportTypeNew ReportType = iota
	ReportTypeFill
	ReportTypeDone
	ReportTypeCanceled
	ReportTypeStopped
	ReportTypeRejected

	reportTypeNewStr      = "new"
	reportTypeFillStr     = "fill"
	reportTypeDoneStr     = "done"
	reportTypeCanceledStr = "canceled"
	reportTypeStoppedStr  = "stopped"
	reportTypeRejectedStr = "rejected"
)

var (
	reportTypeNewByte      = []byte(`"new"`)
	reportTypeFillByte     = []byte(`"fill"`)
	reportTypeDoneByte     = []byte(`"done"`)
	reportTypeCanceledByte = []byte(`"canceled"`)
	reportTypeStoppedByte  = []byte(`"stopped"`)
	reportTypeRejectedByte = []byte(`"rejected"`)
)

// tag 150 value table
var reportTypeFixMapping = map[string]ReportType{
	"0": ReportTypeNew,
	"1": ReportTypeFill,
	"3": ReportTypeDone,
	"4": ReportTypeCanceled,
	"7": ReportTypeStopped,
	"8": ReportTypeRejected,
}

func (rt ReportType) String() string {
	switch rt {
	case ReportTypeNew:
		return reportTypeNewStr
	case ReportTypeFill:
		return reportTypeFillStr
	case ReportTypeDone:
		return reportTypeDoneStr
	case ReportTypeCanceled:
		return reportTypeCanceledStr
	case ReportTypeStopped:
		return reportTypeStoppedStr
	case ReportTypeRejected:
		return reportTypeRejectedStr
	}
	panic("invalid report type string conversion" + strconv.Itoa(int(rt)))
}

func (rt ReportType) MarshalJSON() ([]byte, error) {
	switch rt {
	case ReportTypeNew:
		return reportTypeNewByte, nil
	case ReportTypeFill:
		return reportTypeFillByte, nil
	case ReportTypeDone:
		return reportTypeDoneByte, nil
	case ReportTypeCanceled:
		return reportTypeCanceledByte, nil
	case ReportTypeStopped:
		return reportTypeStoppedByte, nil
	case ReportTypeRejected:
		return reportTypeRejectedByte, nil
	}
	return nil, errors.New("invalid report type json conversion: " + strconv.Itoa(int(rt)))
}

func (rt *ReportType) UnmarshalJSON(data []byte) error {
	switch {
	case bytes.Equal(data, reportTypeNewByte):
		*rt = ReportTypeNew
	case bytes.Equal(data, reportTypeFillByte):
		*rt = ReportTypeFill
	case bytes.Equal(data, reportTypeDoneByte):
		*rt = ReportTypeDone
	case bytes.Equal(data, reportTypeCanceledByte):
		*rt = ReportTypeCanceled
	case bytes.Equal(data, reportTypeStoppedByte):
		*rt = ReportTypeStopped
	case bytes.Equal(data, reportTypeRejectedByte):
		*rt = ReportTypeRejected
	default:
		return errors.New("unsupported report type: " + string(data))
	}
	return nil
}

func ReportTypeStrToType(value string) (ReportType, error) {
	switch value {
	case reportTypeNewStr:
		return ReportTypeNew, nil
	case reportTypeFillStr:
		return ReportTypeFill, nil
	case reportTypeDoneStr:
		return ReportTypeDone, nil
	case reportTypeCanceledStr:
		return ReportTypeCanceled, nil
	case reportTypeStoppedStr:
		return ReportTypeStopped, nil
	case reportTypeRejectedStr:
		return ReportTypeRejected, nil
	}
	return 0, errors.New("unsupported report type: " + value)
}

func reportTypeFromFixCode(code string) (ReportType, bool) {
	rt, ok := reportTypeFixMapping[code]
	return rt, ok
}
