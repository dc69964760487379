package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/AlecAivazis/survey/v2/terminal"
	"github.com/google/go-cmp/cmp"
)

// scriptedPrompter answers prompts from fixed queues and records what it
// was asked.
type scriptedPrompter struct {
	selects  []int
	inputs   []string
	confirms []bool
	asked    []string
}

func (p *scriptedPrompter) Select(message string, options []string) (int, error) {
	p.asked = append(p.asked, message)
	if len(p.selects) == 0 {
		return 0, terminal.InterruptErr
	}
	idx := p.selects[0]
	p.selects = p.selects[1:]
	if idx < 0 || idx >= len(options) {
		return 0, fmt.Errorf("select %d out of range for %q", idx, message)
	}
	return idx, nil
}

func (p *scriptedPrompter) Input(message, def string) (string, error) {
	return p.nextInput(message)
}

func (p *scriptedPrompter) Multiline(message, def string) (string, error) {
	return p.nextInput(message)
}

func (p *scriptedPrompter) nextInput(message string) (string, error) {
	p.asked = append(p.asked, message)
	if len(p.inputs) == 0 {
		return "", terminal.InterruptErr
	}
	s := p.inputs[0]
	p.inputs = p.inputs[1:]
	return s, nil
}

func (p *scriptedPrompter) Confirm(message string, def bool) (bool, error) {
	p.asked = append(p.asked, message)
	if len(p.confirms) == 0 {
		return def, nil
	}
	b := p.confirms[0]
	p.confirms = p.confirms[1:]
	return b, nil
}

func useExplorer(t *testing.T, p prompter, interactive bool) {
	t.Helper()
	prevPrompter, prevInteractive := newPrompter, isInteractive
	newPrompter = func() prompter { return p }
	isInteractive = func() bool { return interactive }
	t.Cleanup(func() {
		newPrompter, isInteractive = prevPrompter, prevInteractive
	})
}

func TestExplore_EditSendAndCurl(t *testing.T) {
	srv := newPetServer(t)
	// Tags: pets, Other, Quit. Endpoints of pets: list, create, get, delete, Back.
	// Form of getPet: petId, Send, Curl, Back.
	p := &scriptedPrompter{
		selects: []int{0, 2, 0, 1, 2, 3, 4, 2},
		inputs:  []string{"42"},
	}
	useExplorer(t, p, true)

	out, err := runCLI(t, "--spec", srv.specPath(t), "explore")
	if err != nil {
		t.Fatalf("explore: %v", err)
	}
	for _, want := range []string{"200", `"Answer"`, "curl -X GET " + srv.URL + "/v1/pets/42"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output:\n%s", want, out)
		}
	}
	if len(p.selects) != 0 {
		t.Fatalf("unused selections: %v", p.selects)
	}
}

func TestExplore_BodyFromExample(t *testing.T) {
	srv := newPetServer(t)
	// createPet form: pet, Send, Curl, Back.
	p := &scriptedPrompter{
		selects:  []int{0, 1, 0, 1, 3, 4, 2},
		inputs:   []string{`{"name": "Tom", "tag": "cat",}`},
		confirms: []bool{true},
	}
	useExplorer(t, p, true)

	if _, err := runCLI(t, "--spec", srv.specPath(t), "explore"); err != nil {
		t.Fatalf("explore: %v", err)
	}
	if diff := cmp.Diff(map[string]any{"name": "Tom", "tag": "cat"}, srv.body()); diff != "" {
		t.Fatalf("body mismatch (-want +got):\n%s", diff)
	}
	if !containsString(p.asked, "Start from a generated example?") {
		t.Fatalf("expected the example prompt, asked %v", p.asked)
	}
}

func TestExplore_InterruptEndsQuietly(t *testing.T) {
	p := &scriptedPrompter{selects: []int{1}}
	useExplorer(t, p, true)

	path := writeSpec(t, petstoreSpec)
	if _, err := runCLI(t, "--spec", path, "explore"); err != nil {
		t.Fatalf("explore: %v", err)
	}
}

func TestExplore_RequiresTerminal(t *testing.T) {
	useExplorer(t, &scriptedPrompter{}, false)

	root := NewRootCmd()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	root.SetArgs([]string{"--spec", "unused.json", "explore"})
	err := root.Execute()
	if !errors.Is(err, ErrUsage) {
		t.Fatalf("expected usage error, got %v", err)
	}
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
