// Package store provides PaymentSource implementations.
package store

import (
	"context"
	"sort"
	"sync"

	"github.com/warp/payslip-engine/payroll"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu        sync.RWMutex
	employees map[payroll.EmployeeID]bool
	payments  map[payroll.EmployeeID][]payroll.Payment
}

func NewMemory() *Memory {
	return &Memory{
		employees: make(map[payroll.EmployeeID]bool),
		payments:  make(map[payroll.EmployeeID][]payroll.Payment),
	}
}

// AddEmployee registers an employee with no payments.
func (m *Memory) AddEmployee(id payroll.EmployeeID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.employees[id] = true
}

// Add stores payments, registering their employees. Payments are kept
// ordered by date.
func (m *Memory) Add(payments ...payroll.Payment) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, p := range payments {
		m.employees[p.EmployeeID] = true
		ps := m.payments[p.EmployeeID]

		i := sort.Search(len(ps), func(i int) bool {
			return ps[i].Date.After(p.Date)
		})
		ps = append(ps, payroll.Payment{})
		copy(ps[i+1:], ps[i:])
		ps[i] = p
		m.payments[p.EmployeeID] = ps
	}
}

// EmployeePayments implements payroll.PaymentSource.
func (m *Memory) EmployeePayments(_ context.Context, employeeID payroll.EmployeeID, year int) ([]payroll.Payment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if !m.employees[employeeID] {
		return nil, payroll.ErrEmployeeNotFound
	}

	var result []payroll.Payment
	for _, p := range m.payments[employeeID] {
		if payroll.YearFilter(p, year) {
			result = append(result, p)
		}
	}
	return result, nil
}
