// Package pgstore is the PostgreSQL persistence backend. It implements the
// domain repository contracts with hand-written SQL over pgx, and commits
// every mutation registered on a unit of work inside one transaction.
//
// The schema lives in migrations/acm_db.sql. Soft-deleted rows stay in
// their tables and are excluded from every read by a date_deleted IS NULL
// predicate. Membership collections live in join tables and are rewritten
// wholesale when their owning aggregate is updated.
package pgstore
