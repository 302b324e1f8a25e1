/*
Package storage defines the persistence model behind the REST API.

Store is implemented by memory.Store for development and tests and by
postgres.Store for deployments with DATABASE_URL set. Every per-user
read and delete is scoped by user id; rows owned by someone else behave
as ErrNotFound.
*/
package storage
