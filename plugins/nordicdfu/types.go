package nordicdfu

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
)

// StartRequest carries the arguments of a startDfu call.
type StartRequest struct {
	Address  string
	Name     string
	FilePath string

	FileInAsset                                          bool
	ForceDfu                                             bool
	EnableUnsafeExperimentalButtonlessServiceInSecureDfu bool
	DisableNotification                                  bool
	KeepBond                                             bool
	PacketReceiptNotificationsEnabled                    bool
	RestoreBond                                          bool
	StartAsForegroundService                             bool
	NumberOfPackets                                      int
}

func parseStartRequest(args map[string]any) (StartRequest, error) {
	req := StartRequest{
		Address:  stringArg(args, "address"),
		Name:     stringArg(args, "name"),
		FilePath: stringArg(args, "filePath"),
	}
	req.FileInAsset = boolArg(args, "fileInAsset")
	req.ForceDfu = boolArg(args, "forceDfu")
	req.EnableUnsafeExperimentalButtonlessServiceInSecureDfu = boolArg(args, "enableUnsafeExperimentalButtonlessServiceInSecureDfu")
	req.DisableNotification = boolArg(args, "disableNotification")
	req.KeepBond = boolArg(args, "keepBond")
	req.PacketReceiptNotificationsEnabled = boolArg(args, "packetReceiptNotificationsEnabled")
	req.RestoreBond = boolArg(args, "restoreBond")
	req.StartAsForegroundService = boolArg(args, "startAsForegroundService")

	n, err := intArg(args, "numberOfPackets")
	if err != nil {
		return StartRequest{}, err
	}
	req.NumberOfPackets = n

	if req.Address == "" {
		return StartRequest{}, fmt.Errorf("%w: address is required", ErrInvalidArguments)
	}
	if req.FilePath == "" {
		return StartRequest{}, fmt.Errorf("%w: filePath is required", ErrInvalidArguments)
	}
	if req.NumberOfPackets < 0 {
		return StartRequest{}, fmt.Errorf("%w: numberOfPackets must not be negative", ErrInvalidArguments)
	}
	return req, nil
}

func stringArg(args map[string]any, key string) string {
	if v, ok := args[key].(string); ok {
		return strings.TrimSpace(v)
	}
	return ""
}

func boolArg(args map[string]any, key string) bool {
	v, _ := args[key].(bool)
	return v
}

func intArg(args map[string]any, key string) (int, error) {
	var n int64
	switch v := args[key].(type) {
	case nil:
		return 0, nil
	case int:
		n = int64(v)
	case int8:
		n = int64(v)
	case int16:
		n = int64(v)
	case int32:
		n = int64(v)
	case int64:
		n = v
	case uint:
		if v > math.MaxInt32 {
			return 0, fmt.Errorf("%w: %s is out of range", ErrInvalidArguments, key)
		}
		n = int64(v)
	case uint8:
		n = int64(v)
	case uint16:
		n = int64(v)
	case uint32:
		n = int64(v)
	case uint64:
		if v > math.MaxInt32 {
			return 0, fmt.Errorf("%w: %s is out of range", ErrInvalidArguments, key)
		}
		n = int64(v)
	case float32:
		return floatArg(key, float64(v))
	case float64:
		return floatArg(key, v)
	case json.Number:
		i, err := v.Int64()
		if err != nil {
			return 0, fmt.Errorf("%w: %s must be an integer", ErrInvalidArguments, key)
		}
		n = i
	default:
		return 0, fmt.Errorf("%w: %s has type %T", ErrInvalidArguments, key, v)
	}
	if n > math.MaxInt32 || n < math.MinInt32 {
		return 0, fmt.Errorf("%w: %s is out of range", ErrInvalidArguments, key)
	}
	return int(n), nil
}

func floatArg(key string, v float64) (int, error) {
	if v != math.Trunc(v) || v > math.MaxInt32 || v < math.MinInt32 {
		return 0, fmt.Errorf("%w: %s must be an integer", ErrInvalidArguments, key)
	}
	return int(v), nil
}
