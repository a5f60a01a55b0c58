package video

import (
	"bufio"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

type probeInfo struct {
	Width    int
	Height   int
	Duration time.Duration
}

// parseProbeOutput reads ffprobe's default=noprint_wrappers=1 key=value
// output for the fields the decoder needs.
func parseProbeOutput(raw string) (probeInfo, error) {
	var info probeInfo
	scanner := bufio.NewScanner(strings.NewReader(raw))
	for scanner.Scan() {
		key, value, found := strings.Cut(strings.TrimSpace(scanner.Text()), "=")
		if !found {
			continue
		}
		switch key {
		case "width":
			v, err := strconv.Atoi(value)
			if err != nil {
				return probeInfo{}, errors.Wrap(err, "parse width")
			}
			info.Width = v
		case "height":
			v, err := strconv.Atoi(value)
			if err != nil {
				return probeInfo{}, errors.Wrap(err, "parse height")
			}
			info.Height = v
		case "duration":
			secs, err := strconv.ParseFloat(value, 64)
			if err != nil {
				return probeInfo{}, errors.Wrap(err, "parse duration")
			}
			info.Duration = time.Duration(secs * float64(time.Second))
		}
	}
	if info.Width <= 0 || info.Height <= 0 {
		return probeInfo{}, errors.New("no video stream dimensions")
	}
	if info.Duration <= 0 {
		return probeInfo{}, errors.New("no source duration")
	}
	return info, nil
}

// parseFeatureList extracts feature names from ffmpeg -encoders / -muxers
// listings. Lines look like " V....D libx264   H.264 / AVC ..."; the name is
// the second whitespace-separated field after the flag column.
func parseFeatureList(raw string) map[string]struct{} {
	features := make(map[string]struct{})
	scanner := bufio.NewScanner(strings.NewReader(raw))
	header := true
	for scanner.Scan() {
		line := scanner.Text()
		if header {
			// The listing proper starts after the "-----" separator
			if strings.Contains(line, "-----") {
				header = false
			}
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		for _, name := range strings.Split(fields[1], ",") {
			if name != "" {
				features[name] = struct{}{}
			}
		}
	}
	return features
}
