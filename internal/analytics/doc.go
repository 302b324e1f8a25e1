// Package analytics summarizes stored content analyses with gonum/stat.
package analytics
