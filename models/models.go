package models

// This file serves as the central export point for all database models
// Import this package to access all model types

// All models are automatically exported from their respective files:
// - Profile from profile.go
// - Product from product.go
// - WorkSession from session.go
// - Evaluation, InternalNote from evaluation.go
// - SystemConfig from config.go
// - PlayerStats (derived, never persisted) from stats.go

// Database schema overview:
// 1. profiles - Operator and employee identities; role drives UI-level authorization only
// 2. products - Task catalog with value weights and standard durations
// 3. work_sessions - One row per timed work attempt; open rows have a NULL ended_at
// 4. evaluations - Externally supplied quality/punctuality scores per employee and period
// 5. internal_notes - Append-only manager/admin notes about an employee
// 6. system_configs - Single row holding the four global score weights
