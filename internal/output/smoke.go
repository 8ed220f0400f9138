package output

import (
	"fmt"
	"io"

	"plannercheck/internal/smoke"
)

// CreatedPlaceholder stands in for the id of a record created without one.
const CreatedPlaceholder = "Created"

// SmokeReport writes the smoke run report.
func SmokeReport(w io.Writer, r *smoke.Report, cluster, database string) {
	Section(w, "🚀 API SMOKE TEST")
	fmt.Fprintf(w, "API: %s\n", r.APIURL)
	fmt.Fprintf(w, "User: %s\n", r.Email)

	fmt.Fprintln(w)
	fmt.Fprintln(w, "🔐 AUTHENTICATION:")
	for _, s := range r.Auth {
		stepLine(w, s, s.Value)
	}
	if !r.Authenticated {
		fmt.Fprintf(w, "\n%s Cannot proceed without authentication\n", MarkFail)
		return
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "📊 CREATED ITEMS:")
	for _, s := range r.Creates {
		id := s.Value
		if id == "" {
			id = CreatedPlaceholder
		}
		stepLine(w, s, id)
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "🔎 VERIFYING SAVED DATA:")
	for _, s := range r.Verifies {
		stepLine(w, s, fmt.Sprintf("%d record(s) found", s.Count))
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Steps: %d passed, %d failed\n", r.Passed(), r.Failed())

	fmt.Fprintln(w)
	fmt.Fprintln(w, "🔄 TO TEST CROSS-DEVICE SYNC:")
	fmt.Fprintln(w, "  1. Log in on Device 1 with:")
	fmt.Fprintf(w, "     📧 Email: %s\n", r.Email)
	fmt.Fprintf(w, "     🔐 Password: %s\n", r.Password)
	fmt.Fprintln(w, "  2. Open another browser/device and log in with the same credentials")
	fmt.Fprintln(w, "  3. Verify all created data appears on both devices")
	fmt.Fprintln(w, "  4. Modify data on Device 1 and verify it syncs to Device 2")
	fmt.Fprintln(w, "  5. Check data persistence across multiple devices")

	fmt.Fprintln(w)
	fmt.Fprintln(w, "💾 DATA LOCATION:")
	fmt.Fprintf(w, "  🗄️  Cluster: %s\n", cluster)
	fmt.Fprintf(w, "  📦 Database: %s\n", database)
	fmt.Fprintf(w, "  Finished: %s\n", r.Finished.Format(TimeLayout))
}

func stepLine(w io.Writer, s smoke.Step, value string) {
	if !s.OK {
		fmt.Fprintf(w, "  %s %s: %s\n", MarkFail, s.Name, s.Message)
		return
	}
	if value == "" {
		fmt.Fprintf(w, "  %s %s\n", MarkOK, s.Name)
		return
	}
	fmt.Fprintf(w, "  %s %s: %s\n", MarkOK, s.Name, value)
}
