package database

import (
	"errors"
	"fmt"
	"testing"

	"github.com/go-sql-driver/mysql"
)

func TestIsSerializationFailure(t *testing.T) {
	deadlock := &mysql.MySQLError{Number: 1213, Message: "Deadlock found when trying to get lock"}
	lockWait := &mysql.MySQLError{Number: 1205, Message: "Lock wait timeout exceeded"}
	dupKey := &mysql.MySQLError{Number: 1062, Message: "Duplicate entry"}

	if !isSerializationFailure(deadlock) {
		t.Fatal("1213 must count as a serialization failure")
	}
	if !isSerializationFailure(lockWait) {
		t.Fatal("1205 must count as a serialization failure")
	}
	if isSerializationFailure(dupKey) {
		t.Fatal("1062 must not count as a serialization failure")
	}
	if isSerializationFailure(errors.New("plain error")) {
		t.Fatal("non-MySQL errors must not count")
	}
	// wrapped driver errors still match
	wrapped := fmt.Errorf("insert reservation: %w", deadlock)
	if !isSerializationFailure(wrapped) {
		t.Fatal("wrapped 1213 must count as a serialization failure")
	}
}
