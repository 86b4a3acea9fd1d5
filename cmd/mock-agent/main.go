// Command mock-agent is a deterministic reference agent for local benchmark
// runs. It answers every task from the artifacts it is given, speaks both
// wire versions, and uses a second turn when the dispatcher allows one, so a
// full pipeline run can be exercised without any real agent behind it.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"sort"
	"strings"

	"github.com/ppiankov/dealbench/internal/model"
)

func main() {
	addr := flag.String("addr", ":8080", "listen address")
	flag.Parse()

	http.HandleFunc("/agent", handleTask)

	log.Printf("mock-agent listening on %s", *addr)
	if err := http.ListenAndServe(*addr, nil); err != nil {
		log.Fatal(err)
	}
}

func handleTask(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "POST only", http.StatusMethodNotAllowed)
		return
	}

	var req model.ArtifactAgentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("decode request: %v", err), http.StatusBadRequest)
		return
	}
	if err := req.Validate(); err != nil {
		http.Error(w, fmt.Sprintf("invalid request: %v", err), http.StatusBadRequest)
		return
	}

	resp := answer(&req)

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		log.Printf("encode response: %v", err)
	}
}

// answer builds a deterministic response. The first turn of a multi-turn
// exchange reports incomplete so the dispatcher's continuation path gets
// exercised; the second turn always completes.
func answer(req *model.ArtifactAgentRequest) *model.ArtifactAgentResponse {
	resp := &model.ArtifactAgentResponse{
		Version:    req.Version,
		IsComplete: true,
		Confidence: 0.5,
	}

	if req.Version == model.WireV2 && req.MaxTurns > 1 && req.TurnNumber == 1 {
		resp.IsComplete = false
		resp.Reasoning = fmt.Sprintf("reviewing %d artifacts for %s", len(req.Artifacts), req.TaskType)
		resp.Answer = draftAnswer(req)
		return resp
	}

	resp.Reasoning = "final pass over available artifacts"
	resp.Answer = draftAnswer(req)
	if len(req.Artifacts) > 0 {
		resp.Confidence = 0.8
	}
	return resp
}

func draftAnswer(req *model.ArtifactAgentRequest) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s for checkpoint %s", req.TaskType, req.CheckpointID)
	if req.DealSnapshot.Company != "" {
		fmt.Fprintf(&b, " (deal with %s, stage %s)", req.DealSnapshot.Company, req.DealSnapshot.Stage)
	}
	b.WriteString(". ")

	if len(req.Artifacts) == 0 {
		b.WriteString("No artifacts were provided; answering from the deal snapshot only.")
		return b.String()
	}

	titles := make([]string, 0, len(req.Artifacts))
	for _, a := range req.Artifacts {
		titles = append(titles, fmt.Sprintf("%s (%s)", a.Title(), a.Type))
	}
	sort.Strings(titles)

	fmt.Fprintf(&b, "Based on %d artifacts: %s.", len(titles), strings.Join(titles, "; "))
	return b.String()
}
