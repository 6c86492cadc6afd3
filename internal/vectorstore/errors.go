package vectorstore

import "fmt"

// StoreWriteError reports a failed schema or insert operation against the
// vector database.
type StoreWriteError struct {
	Op  string
	Err error
}

func (e *StoreWriteError) Error() string {
	return fmt.Sprintf("vector store write (%s): %v", e.Op, e.Err)
}

func (e *StoreWriteError) Unwrap() error { return e.Err }

// StoreQueryError reports a failed search against the vector database.
// An empty result set is not an error.
type StoreQueryError struct {
	Op  string
	Err error
}

func (e *StoreQueryError) Error() string {
	return fmt.Sprintf("vector store query (%s): %v", e.Op, e.Err)
}

func (e *StoreQueryError) Unwrap() error { return e.Err }
