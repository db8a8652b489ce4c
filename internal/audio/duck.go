package audio

import (
	"context"
	"fmt"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
)

var percentRe = regexp.MustCompile(`(\d+)\s*%`)

// pactl calls are indirected so tests can intercept them.
var (
	listStreams        = pactlListStreams
	setSinkInputVolume = pactlSetSinkInputVolume
)

type streamInfo struct {
	ID      int
	Volume  int
	AppName string
}

// Ducker lowers other applications' playback streams while the microphone
// is open and restores them afterwards. Streams whose application.name is
// in selfNames are left alone.
type Ducker struct {
	selfNames   []string
	duckVolume  int
	originalVol map[int]int
	active      bool
}

func NewDucker(selfNames []string, duckVolume int) *Ducker {
	if duckVolume < 0 {
		duckVolume = 0
	}
	if duckVolume > 150 {
		duckVolume = 150
	}
	return &Ducker{
		selfNames:   append([]string(nil), selfNames...),
		duckVolume:  duckVolume,
		originalVol: make(map[int]int),
	}
}

// Duck drops every foreign stream that is louder than the duck volume and
// remembers its original level.
func (d *Ducker) Duck(ctx context.Context) error {
	if d.active {
		return nil
	}

	streams, err := listStreams(ctx)
	if err != nil {
		return fmt.Errorf("list streams: %w", err)
	}

	d.originalVol = make(map[int]int)
	for _, s := range streams {
		if d.isSelfStream(s) || s.Volume <= d.duckVolume {
			continue
		}
		if err := setSinkInputVolume(ctx, s.ID, d.duckVolume); err != nil {
			d.rollback(ctx)
			return fmt.Errorf("duck id=%d: %w", s.ID, err)
		}
		d.originalVol[s.ID] = s.Volume
	}

	d.active = true
	return nil
}

// rollback undoes a partial duck so no stream is left quiet with its
// original volume forgotten. Best effort, a vanished stream just stays
// gone.
func (d *Ducker) rollback(ctx context.Context) {
	for id, vol := range d.originalVol {
		setSinkInputVolume(ctx, id, vol)
	}
	d.originalVol = make(map[int]int)
}

// Restore puts every ducked stream back to its remembered volume. Streams
// that vanished in the meantime are skipped by pactl itself.
func (d *Ducker) Restore(ctx context.Context) error {
	if !d.active {
		return nil
	}

	for id, vol := range d.originalVol {
		if err := setSinkInputVolume(ctx, id, vol); err != nil {
			return fmt.Errorf("restore id=%d: %w", id, err)
		}
	}

	d.originalVol = make(map[int]int)
	d.active = false
	return nil
}

func (d *Ducker) isSelfStream(s streamInfo) bool {
	for _, name := range d.selfNames {
		if s.AppName == name {
			return true
		}
	}
	return false
}

func pactlListStreams(ctx context.Context) ([]streamInfo, error) {
	cmd := exec.CommandContext(ctx, "pactl", "list", "sink-inputs")
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("pactl list sink-inputs: %w", err)
	}
	return parseSinkInputs(string(out)), nil
}

// parseSinkInputs pulls the id, the first Volume percentage and the
// application.name out of `pactl list sink-inputs` output.
func parseSinkInputs(text string) []streamInfo {
	parts := strings.Split(text, "Sink Input #")
	if len(parts) <= 1 {
		return nil
	}

	var res []streamInfo

	for i := 1; i < len(parts); i++ {
		block := parts[i]

		newline := strings.IndexByte(block, '\n')
		if newline <= 0 {
			continue
		}

		id, err := strconv.Atoi(strings.TrimSpace(block[:newline]))
		if err != nil {
			continue
		}

		s := streamInfo{ID: id}

		for _, line := range strings.Split(block[newline+1:], "\n") {
			line = strings.TrimSpace(line)

			if strings.HasPrefix(line, "Volume:") && s.Volume == 0 {
				if m := percentRe.FindStringSubmatch(line); len(m) >= 2 {
					if v, err := strconv.Atoi(m[1]); err == nil {
						s.Volume = v
					}
				}
			}

			if strings.HasPrefix(line, "application.name =") && s.AppName == "" {
				if v, ok := quotedValue(line); ok {
					s.AppName = v
				}
			}
		}

		if s.Volume == 0 && s.AppName == "" {
			continue
		}

		res = append(res, s)
	}

	return res
}

func quotedValue(line string) (string, bool) {
	i := strings.IndexByte(line, '"')
	if i < 0 {
		return "", false
	}
	line = line[i+1:]
	j := strings.IndexByte(line, '"')
	if j < 0 {
		return "", false
	}
	return line[:j], true
}

func pactlSetSinkInputVolume(ctx context.Context, id, percent int) error {
	if percent < 0 {
		percent = 0
	}
	if percent > 150 {
		percent = 150
	}
	cmd := exec.CommandContext(ctx, "pactl", "set-sink-input-volume",
		strconv.Itoa(id), fmt.Sprintf("%d%%", percent))
	return cmd.Run()
}
