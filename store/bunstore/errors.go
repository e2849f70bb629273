package bunstore

// The driver imports below also register "postgres", "sqlite3" and "sqlite"
// with database/sql.
import (
	"database/sql"
	"errors"
	"strings"

	"github.com/lib/pq"
	mattn "github.com/mattn/go-sqlite3"
	modernc "modernc.org/sqlite"
	modernclib "modernc.org/sqlite/lib"

	"github.com/unkn0wn-root/bookcache"
)

// pqUniqueViolation is the SQLSTATE for unique_violation.
const pqUniqueViolation = "23505"

// storeErr wraps err for the catalog: unique violations become ErrConflict,
// everything else stays a plain StoreError.
func storeErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if isUniqueViolation(err) {
		return &bookcache.StoreError{Op: op, Err: errors.Join(bookcache.ErrConflict, err)}
	}
	return &bookcache.StoreError{Op: op, Err: err}
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == pqUniqueViolation
	}
	var mErr mattn.Error
	if errors.As(err, &mErr) {
		return mErr.ExtendedCode == mattn.ErrConstraintUnique
	}
	var nErr *modernc.Error
	if errors.As(err, &nErr) {
		code := nErr.Code()
		return code == modernclib.SQLITE_CONSTRAINT_UNIQUE ||
			(code&0xff == modernclib.SQLITE_CONSTRAINT && strings.Contains(nErr.Error(), "UNIQUE"))
	}
	return false
}

func isNoRows(err error) bool { return errors.Is(err, sql.ErrNoRows) }
