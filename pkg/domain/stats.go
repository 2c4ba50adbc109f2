package domain

// Stats are counts over non-milestone activities.
type Stats struct {
	Total int

	Done int

	// Em Execução and Adiantado. Early activities are still reported as in execution.
	InProgress int

	Planned int

	// Atrasado, plus activities with positive delay in another status.
	Late int

	// Adiantado. Also counted in InProgress.
	Early int

	Milestones int

	// Percentages of Total. 0 when Total is 0.
	PctDone       float64
	PctInProgress float64
	PctPlanned    float64
	PctLate       float64
}

// Summarize counts activities.
func Summarize(acts []Activity) Stats {
	s := Stats{}
	for _, a := range acts {
		if a.Milestone {
			s.Milestones++
			continue
		}
		s.Total++
		switch a.Status {
		case StatusDone:
			s.Done++
		case StatusInProgress:
			s.InProgress++
		case StatusEarly:
			s.InProgress++
			s.Early++
		case StatusPlanned:
			s.Planned++
		case StatusLate:
			s.Late++
		}
		if a.DelayMinutes > 0 && a.Status != StatusLate {
			s.Late++
		}
	}

	if s.Total > 0 {
		total := float64(s.Total)
		s.PctDone = float64(s.Done) / total * 100
		s.PctInProgress = float64(s.InProgress) / total * 100
		s.PctPlanned = float64(s.Planned) / total * 100
		s.PctLate = float64(s.Late) / total * 100
	}
	return s
}

// Report is statistics of the whole change window.
type Report struct {
	Overall Stats

	// CRQ name -> Stats. Every CRQ in the catalogue has an entry.
	PerCRQ map[string]Stats
}

// Statistics computes the report, overall and per CRQ.
func Statistics(acts []Activity, catalogue Catalogue) Report {
	byCRQ := map[string][]Activity{}
	for _, a := range acts {
		byCRQ[a.CRQ] = append(byCRQ[a.CRQ], a)
	}

	per := map[string]Stats{}
	for _, crq := range catalogue {
		per[crq.Name] = Summarize(byCRQ[crq.Name])
	}
	for name, as := range byCRQ {
		if _, ok := per[name]; !ok {
			per[name] = Summarize(as)
		}
	}

	return Report{Overall: Summarize(acts), PerCRQ: per}
}
