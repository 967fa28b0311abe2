package scope

import "gorm.io/gorm"

// Employee restricts a query to one employee's rows. An empty id leaves the
// query unscoped, which callers only pass after an HR capability check.
func Employee(employeeID string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if employeeID == "" {
			return db
		}
		return db.Where("employee_id = ?", employeeID)
	}
}
