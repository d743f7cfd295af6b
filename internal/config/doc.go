// Package config computes the effective configuration of a test method.
//
// Configuration comes in layers: the runner-wide global config, one optional
// simenv.yaml file per package segment (outermost first), the test class and
// finally the test method. Later layers override earlier ones; list-valued
// settings such as shadows and libraries accumulate instead.
package config
