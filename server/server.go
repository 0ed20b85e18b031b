// readlift: lifting simulated long-read alignments over to a reference genome.
// Copyright (c) 2021 imec vzw.

// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version, and Additional Terms
// (see below).

// This program is distributed in the hope that it will be useful, but
// WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the GNU
// Affero General Public License for more details.

// You should have received a copy of the GNU Affero General Public
// License and Additional Terms along with this program. If not, see
// <https://github.com/ExaScience/readlift/blob/master/LICENSE.txt>.

package server

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/exascience/readlift/intervals"
	"github.com/exascience/readlift/mapblocks"
	"github.com/exascience/readlift/utils"
)

type (
	// Segment is the JSON form of an interval on a contig.
	Segment struct {
		Contig string `json:"contig"`
		Start  int32  `json:"start"`
		End    int32  `json:"end"`
		Strand string `json:"strand"`
	}

	// LiftOverResponse is returned by the liftover endpoint.
	LiftOverResponse struct {
		Query    Segment   `json:"query"`
		Segments []Segment `json:"segments"`
	}

	// ContigSummary describes the blocks of one source contig.
	ContigSummary struct {
		Name    string `json:"name"`
		Blocks  int    `json:"blocks"`
		Regions int    `json:"regions"`
		Covered int64  `json:"covered"`
	}

	errorResponse struct {
		Error string `json:"error"`
	}
)

// A Server answers liftover queries against one BlockIndex.
type Server struct {
	httpAddr          string
	engine            *chi.Mux
	index             *mapblocks.BlockIndex
	minIntervalLength int32
}

// NewServer creates a Server listening on addr. minIntervalLength is
// used for queries that do not set the min parameter.
func NewServer(addr string, index *mapblocks.BlockIndex, minIntervalLength int32) *Server {
	srv := &Server{
		httpAddr:          addr,
		engine:            chi.NewRouter(),
		index:             index,
		minIntervalLength: minIntervalLength,
	}
	srv.engine.Use(middleware.RequestID)
	srv.engine.Use(middleware.Logger)
	srv.engine.Use(middleware.Recoverer)
	srv.registerRoutes()
	return srv
}

// Handler returns the http.Handler of the server.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run listens on the address of the server until an error occurs.
func (s *Server) Run() error {
	log.Println("Server running on:", s.httpAddr)
	return http.ListenAndServe(s.httpAddr, s.engine)
}

func (s *Server) registerRoutes() {
	s.engine.Get("/health", s.health)
	s.engine.Get("/contigs", s.contigs)
	s.engine.Get("/liftover/{contig}/{start}/{end}", s.liftOver)
}

func writeJSON(w http.ResponseWriter, status int, value interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(value); err != nil {
		log.Println("Error writing response:", err)
	}
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, errorResponse{Error: msg})
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "ok",
		"version": utils.ProgramVersion,
		"blocks":  s.index.Len(),
	})
}

func (s *Server) contigs(w http.ResponseWriter, _ *http.Request) {
	contigs := s.index.Contigs()
	summaries := make([]ContigSummary, 0, len(contigs))
	for _, contig := range contigs {
		regions := s.index.CoveredRegions(contig)
		summaries = append(summaries, ContigSummary{
			Name:    *contig,
			Blocks:  len(s.index.Blocks(contig)),
			Regions: len(regions),
			Covered: intervals.TotalLen(regions),
		})
	}
	writeJSON(w, http.StatusOK, summaries)
}

func parsePosition(s string) (int32, bool) {
	value, err := strconv.ParseInt(s, 10, 32)
	return int32(value), err == nil && value >= 0
}

func (s *Server) liftOver(w http.ResponseWriter, r *http.Request) {
	contig := chi.URLParam(r, "contig")
	start, ok := parsePosition(chi.URLParam(r, "start"))
	if !ok {
		badRequest(w, "invalid start position")
		return
	}
	end, ok := parsePosition(chi.URLParam(r, "end"))
	if !ok || end < start {
		badRequest(w, "invalid end position")
		return
	}
	strand := intervals.Forward
	if value := r.URL.Query().Get("strand"); value != "" {
		var err error
		if strand, err = intervals.ParseStrand(value); err != nil {
			badRequest(w, err.Error())
			return
		}
	}
	minIntervalLength := s.minIntervalLength
	if value := r.URL.Query().Get("min"); value != "" {
		if minIntervalLength, ok = parsePosition(value); !ok {
			badRequest(w, "invalid minimum interval length")
			return
		}
	}
	var lifted []mapblocks.TargetSegment
	if symbol, ok := s.index.Lookup(contig); ok {
		lifted = s.index.Translate(symbol, start, end, strand, minIntervalLength)
	}
	response := LiftOverResponse{
		Query:    Segment{Contig: contig, Start: start, End: end, Strand: strand.String()},
		Segments: make([]Segment, len(lifted)),
	}
	for i, segment := range lifted {
		response.Segments[i] = Segment{
			Contig: *segment.Contig,
			Start:  segment.Interval.Start,
			End:    segment.Interval.End,
			Strand: segment.Strand.String(),
		}
	}
	writeJSON(w, http.StatusOK, response)
}
