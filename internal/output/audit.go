package output

import (
	"fmt"
	"io"

	"plannercheck/internal/audit"
	"plannercheck/internal/config"
)

// AuditReport writes the store audit.
func AuditReport(w io.Writer, r *audit.Report) {
	Section(w, "🔍 DOCUMENT STORE AUDIT")
	fmt.Fprintf(w, "%s Connected to %s\n", MarkOK, r.Cluster)

	fmt.Fprintln(w)
	fmt.Fprintln(w, "📊 COLLECTIONS AND DOCUMENT COUNT:")
	fmt.Fprintln(w, ListSeparator)

	switch {
	case r.ListErr != nil:
		fmt.Fprintf(w, "%s Could not list collections: %v\n", MarkFail, r.ListErr)
	case len(r.Collections) == 0:
		fmt.Fprintf(w, "%s No collections found in database\n", MarkFail)
	default:
		for _, c := range r.Collections {
			collectionLine(w, c)
		}
		fmt.Fprintln(w, ListSeparator)
		fmt.Fprintf(w, "\n📈 TOTAL DOCUMENTS IN DATABASE: %d\n", r.Total)

		fmt.Fprintln(w)
		fmt.Fprintln(w, "📋 DETAILED COLLECTION BREAKDOWN:")
		fmt.Fprintln(w, ListSeparator)
		withData := r.WithData()
		if len(withData) == 0 {
			fmt.Fprintf(w, "%sNo documents found in any collection\n", MarkWarn)
		}
		for _, c := range withData {
			details(w, c)
		}
	}

	Section(w, "👤 KNOWN USERS:")
	if len(r.LookupKeys) == 0 {
		fmt.Fprintf(w, "%sNo lookup emails configured (set %s)\n", MarkWarn, config.EnvLookupEmails)
	}
	for _, u := range r.Users {
		userLine(w, u)
	}

	Section(w, MarkOK+" DATABASE STATUS:")
	fmt.Fprintf(w, "Cluster: %s\n", r.Cluster)
	fmt.Fprintf(w, "Database: %s\n", r.Database)
	fmt.Fprintf(w, "Status: %s\n", connected(r.Connected))
	fmt.Fprintf(w, "Timestamp: %s\n", r.Timestamp.Format(TimeLayout))
	fmt.Fprintln(w, Rule)
}

func collectionLine(w io.Writer, c audit.CollectionSummary) {
	if c.Err != nil {
		fmt.Fprintf(w, "%s %-20s : count failed: %v\n", MarkFail, c.Name, c.Err)
		return
	}
	mark := MarkOK
	if c.Empty() {
		mark = MarkWarn
	}
	fmt.Fprintf(w, "%s %-20s : %6d documents\n", mark, c.Name, c.Count)

	switch {
	case c.SampleErr != nil:
		fmt.Fprintf(w, "   └─ Sample failed: %v\n", c.SampleErr)
	case c.HasData():
		fmt.Fprintf(w, "   └─ Sample %s\n", valueLine(c.Sample))
	}
}

func details(w io.Writer, c audit.CollectionSummary) {
	fmt.Fprintf(w, "%s %s\n", MarkOK, c.Name)
	fmt.Fprintf(w, "   Documents: %d\n", c.Count)
	if c.DetailErr != nil {
		fmt.Fprintf(w, "   %s Could not fetch documents: %v\n", MarkFail, c.DetailErr)
		return
	}
	for i, v := range c.Details {
		fmt.Fprintf(w, "   %d. %s\n", i+1, valueLine(v))
	}
}

func userLine(w io.Writer, u audit.UserLookup) {
	switch {
	case u.Err != nil:
		fmt.Fprintf(w, "%s Lookup failed: %s: %v\n\n", MarkFail, u.Key, u.Err)
	case !u.Found:
		fmt.Fprintf(w, "%s User NOT found: %s\n\n", MarkFail, u.Key)
	default:
		fmt.Fprintf(w, "%s User found: %s\n", MarkOK, u.Key)
		fmt.Fprintf(w, "   ID: %s\n", u.ID)
		fmt.Fprintf(w, "   Name: %s\n", u.Name)
		fmt.Fprintf(w, "   Created: %s\n\n", u.Created)
	}
}

func connected(ok bool) string {
	if ok {
		return "Connected"
	}
	return "Not connected"
}

// ConnectionFailure writes the fatal connection error with remediation hints.
func ConnectionFailure(w io.Writer, err error) {
	fmt.Fprintf(w, "%s Error: %v\n", MarkFail, err)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Make sure:")
	fmt.Fprintln(w, "1. The database cluster is reachable from this network")
	fmt.Fprintln(w, "2. The access list (IP allow-list) includes this machine")
	fmt.Fprintf(w, "3. The connection string is correct (%s)\n", config.EnvMongoURI)
}

// UserDataReport writes the per-user audit.
func UserDataReport(w io.Writer, r *audit.UserDataReport) {
	Section(w, "🔍 DATA FOR USER: "+r.UserID)
	fmt.Fprintf(w, "Database: %s\n", r.Database)
	fmt.Fprintln(w, ListSeparator)

	for _, c := range r.Collections {
		if c.Err != nil {
			fmt.Fprintf(w, "%s %-12s : count failed: %v\n", MarkFail, c.Name, c.Err)
			continue
		}
		mark := MarkOK
		if c.Empty() {
			mark = MarkWarn
		}
		fmt.Fprintf(w, "%s %-12s : %d\n", mark, c.Name, c.Count)
		if c.DetailErr != nil {
			fmt.Fprintf(w, "   %s Could not fetch documents: %v\n", MarkFail, c.DetailErr)
		}
		for i, v := range c.Details {
			fmt.Fprintf(w, "   %d. %s\n", i+1, valueLine(v))
		}
	}

	fmt.Fprintln(w, ListSeparator)
	fmt.Fprintf(w, "📈 TOTAL DOCUMENTS FOR USER: %d\n", r.Total)
	fmt.Fprintf(w, "Timestamp: %s\n", r.Timestamp.Format(TimeLayout))
}
