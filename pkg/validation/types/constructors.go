package types

import "time"

func String() *StringType {
	return &StringType{}
}

// Number, float64'e dönüşen sayı alanı.
func Number() *NumberType {
	return &NumberType{}
}

// Integer, int64'e dönüşen tamsayı alanı (ID, adet, kapasite).
func Integer() *NumberType {
	return &NumberType{isInteger: true}
}

// Decimal, decimal.Decimal'e dönüşen para alanı.
func Decimal() *DecimalType {
	return &DecimalType{}
}

// Date, varsayılan olarak RFC3339 ("2030-05-01T20:00:00Z") bekler.
func Date() *DateType {
	return &DateType{format: time.RFC3339}
}

func Boolean() *BooleanType {
	return &BooleanType{}
}

func Array() *ArrayType {
	return &ArrayType{}
}
