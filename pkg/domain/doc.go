package domain

// domain package contains the Domain Models for the change-window board.
//
// `domain/crqboard` package exposes the root object of the application.
// Entrypoints (the server and the admin CLI) instantiate it and use it to interact with the domain.
//
// `domain/ENTITY.go` has high-level entities (Domain Model types) and functions.
// For example, `domain/activity.go` contains the `Activity` entity and the merge of sheet rows with control rows.
//
// `domain/ENTITY` directory contains the "physical" representation of the domain entities in RDB.
// `domain/ENTITY/interface.go` exposes the client interface to handle the domain entity.
//
// # Entities
//
// - `crq`: work-streams of the change window (REDE, OPENSHIFT, NFS, SI). Each has a planned activity count and an emoji.
//
// - `activity`: an activity of a CRQ. It is the merge of a sheet row (planned schedule, imported from a spreadsheet)
// and a control row (operator-entered status, actual times, notes), keyed by (seq, CRQ, row-id).
// Sheet rows are replaced on every import; control rows survive imports.
//
// - `status`: progress of an activity. Planejado -> Em Execução -> Concluído, then Atrasado/Adiantado by delay.
//
// - `stats` and `board`: derived views over activities; counts, percentages, delayed, blocked and upcoming activities.
// Milestones are excluded from every count.
//
// - `backup`: JSON document to export and import the whole store.
//
// - `user`: static user table and permissions.
