package seed

import (
	"encoding/csv"
	"io"
	"log"
	"os"
	"strings"

	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"

	"pharmasales/m/domain"
)

// LoadOperators ingests operator accounts from a CSV with the header
// username,email,password,role. Existing emails are left untouched.
// It returns the number of rows inserted.
func LoadOperators(db *sqlx.DB, csvPath string) int {
	file, err := os.Open(csvPath)
	if err != nil {
		log.Printf("unable to load operators %s: %v", csvPath, err)
		return 0
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	// Skip header
	if _, err := reader.Read(); err != nil {
		log.Printf("unable to read operators header: %v", err)
		return 0
	}

	tx, err := db.Beginx()
	if err != nil {
		log.Printf("unable to start operators transaction: %v", err)
		return 0
	}
	stmt, err := tx.Preparex(tx.Rebind(`INSERT INTO operators (username, email, password, role) VALUES (?, ?, ?, ?) ON CONFLICT (email) DO NOTHING`))
	if err != nil {
		log.Printf("unable to prepare operator insert: %v", err)
		_ = tx.Rollback()
		return 0
	}
	defer stmt.Close()

	rows := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			log.Printf("unable to read operator row: %v", err)
			continue
		}
		if len(record) < 4 {
			continue
		}
		username := strings.TrimSpace(record[0])
		email := strings.ToLower(strings.TrimSpace(record[1]))
		password := strings.TrimSpace(record[2])
		role := strings.ToLower(strings.TrimSpace(record[3]))

		if username == "" || email == "" || password == "" {
			continue
		}
		if !domain.ValidRole(role) {
			log.Printf("skipping operator %s: unknown role %q", email, role)
			continue
		}

		hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			log.Printf("unable to hash password for %s: %v", email, err)
			continue
		}

		res, err := stmt.Exec(username, email, string(hashed), role)
		if err != nil {
			log.Printf("unable to insert operator %s: %v", email, err)
			continue
		}
		if n, _ := res.RowsAffected(); n > 0 {
			rows++
		}
	}

	if err := tx.Commit(); err != nil {
		log.Printf("unable to commit operators seed: %v", err)
		return 0
	}
	log.Printf("seeded %d operators", rows)
	return rows
}
